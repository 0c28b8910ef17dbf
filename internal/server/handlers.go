package server

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/beesaferoot/boardinghouse/internal/billing"
	"github.com/beesaferoot/boardinghouse/internal/models"
	"github.com/beesaferoot/boardinghouse/internal/store"
)

type roomRequest struct {
	RoomNumber  string `json:"room_number" validate:"required,max=255"`
	Description string `json:"description"`
	BaseRent    string `json:"base_rent" validate:"required,numeric"`
}

type tenantRequest struct {
	FullName         string `json:"full_name" validate:"required,max=255"`
	PhoneNumber      string `json:"phone_number" validate:"max=20"`
	Email            string `json:"email" validate:"omitempty,email"`
	RoomID           *uint  `json:"room_id"`
	LeaseStartDate   string `json:"lease_start_date" validate:"required,datetime=2006-01-02"`
	LeaseEndDate     string `json:"lease_end_date" validate:"omitempty,datetime=2006-01-02"`
	IsActive         *bool  `json:"is_active"`
	FixedWaterCharge string `json:"fixed_water_charge" validate:"omitempty,numeric"`
	FixedWiFiCharge  string `json:"fixed_wifi_charge" validate:"omitempty,numeric"`
}

type paymentRequest struct {
	BillID        uint   `json:"bill_id" validate:"required"`
	TenantID      uint   `json:"tenant_id"`
	AmountPaid    string `json:"amount_paid" validate:"required,numeric"`
	PaymentDate   string `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
	PaymentMethod string `json:"payment_method" validate:"max=255"`
	Notes         string `json:"notes"`
}

type paymentPatchRequest struct {
	BillID        uint   `json:"bill_id"`
	AmountPaid    string `json:"amount_paid" validate:"required,numeric"`
	PaymentDate   string `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
	PaymentMethod string `json:"payment_method" validate:"max=255"`
	Notes         string `json:"notes"`
}

type readingRequest struct {
	TenantID     uint   `json:"tenant_id" validate:"required"`
	ReadingValue string `json:"reading_value" validate:"required,numeric"`
	UnitPrice    string `json:"unit_price" validate:"required,numeric"`
	ReadingDate  string `json:"reading_date" validate:"omitempty,datetime=2006-01-02"`
	Notes        string `json:"notes"`
}

// bind parses and validates the JSON body into dst.
func (s *Server) bind(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := s.validator.Struct(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func optionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return models.ParseDate(s)
}

func optionalDecimal(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

func idParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid id")
	}
	return uint(id), nil
}

func (s *Server) financialSummary(c *fiber.Ctx) error {
	sum, err := s.reports.FinancialSummary(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(sum)
}

func (s *Server) occupancy(c *fiber.Ctx) error {
	occ, err := s.reports.Occupancy(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(occ)
}

func (s *Server) listBills(c *fiber.Ctx) error {
	filter := store.BillFilter{
		Type:   models.BillType(c.Query("type")),
		Unpaid: c.QueryBool("unpaid"),
		Search: c.Query("q"),
	}
	if raw := c.Query("tenant_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid tenant_id")
		}
		filter.TenantID = uint(id)
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid bill type")
	}
	bills, err := s.store.ListBills(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": bills})
}

func (s *Server) createRoom(c *fiber.Ctx) error {
	var req roomRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	room := &models.Room{
		RoomNumber:  req.RoomNumber,
		Description: req.Description,
		BaseRent:    decimal.RequireFromString(req.BaseRent),
	}
	if err := s.store.CreateRoom(c.UserContext(), room); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(room)
}

func (s *Server) createTenant(c *fiber.Ctx) error {
	var req tenantRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}

	start, err := models.ParseDate(req.LeaseStartDate)
	if err != nil {
		return err
	}
	tenant := &models.Tenant{
		FullName:       req.FullName,
		PhoneNumber:    req.PhoneNumber,
		Email:          req.Email,
		RoomID:         req.RoomID,
		LeaseStartDate: models.NewDate(start),
		IsActive:       req.IsActive == nil || *req.IsActive,
	}
	if end, err := optionalDate(req.LeaseEndDate); err != nil {
		return err
	} else if !end.IsZero() {
		tenant.LeaseEndDate = models.DatePtr(end)
	}
	if tenant.FixedWaterCharge, err = optionalDecimal(req.FixedWaterCharge); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if tenant.FixedWiFiCharge, err = optionalDecimal(req.FixedWiFiCharge); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := s.store.CreateTenant(c.UserContext(), tenant); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(tenant)
}

func receiptJSON(r *billing.Receipt) fiber.Map {
	return fiber.Map{
		"payment":      r.Payment,
		"bill_id":      r.Bill.ID,
		"bill_is_paid": r.Bill.IsPaid,
		"total_paid":   r.Paid,
		"balance":      r.Balance,
	}
}

func (s *Server) createPayment(c *fiber.Ctx) error {
	var req paymentRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	date, err := optionalDate(req.PaymentDate)
	if err != nil {
		return err
	}
	rcpt, err := s.payments.Record(c.UserContext(), billing.PaymentInput{
		BillID:   req.BillID,
		TenantID: req.TenantID,
		Amount:   decimal.RequireFromString(req.AmountPaid),
		Date:     date,
		Method:   req.PaymentMethod,
		Notes:    req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(receiptJSON(rcpt))
}

func (s *Server) updatePayment(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req paymentPatchRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	date, err := optionalDate(req.PaymentDate)
	if err != nil {
		return err
	}
	rcpt, err := s.payments.Update(c.UserContext(), id, billing.PaymentInput{
		BillID: req.BillID,
		Amount: decimal.RequireFromString(req.AmountPaid),
		Date:   date,
		Method: req.PaymentMethod,
		Notes:  req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(receiptJSON(rcpt))
}

func (s *Server) deletePayment(c *fiber.Ctx) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	bill, err := s.payments.Delete(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"bill_id": bill.ID, "bill_is_paid": bill.IsPaid})
}

func (s *Server) createReading(c *fiber.Ctx) error {
	var req readingRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	date, err := optionalDate(req.ReadingDate)
	if err != nil {
		return err
	}
	res, err := s.meters.RecordReadingAndBill(c.UserContext(), billing.ReadingInput{
		TenantID:       req.TenantID,
		CurrentReading: decimal.RequireFromString(req.ReadingValue),
		UnitPrice:      decimal.RequireFromString(req.UnitPrice),
		ReadingDate:    date,
		Notes:          req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"reading_id":  res.ReadingID,
		"bill_id":     res.BillID,
		"previous":    res.Previous,
		"consumption": res.Consumption,
		"amount":      res.Amount,
		"due_date":    res.DueDate.Format(models.DateLayout),
		"warnings":    res.Warnings,
	})
}
