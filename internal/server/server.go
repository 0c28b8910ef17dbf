// Package server exposes the ledger over a token-guarded JSON API.
package server

import (
	"context"
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"github.com/beesaferoot/boardinghouse/internal/billing"
	"github.com/beesaferoot/boardinghouse/internal/report"
	"github.com/beesaferoot/boardinghouse/internal/store"
)

type Deps struct {
	Store     *store.Store
	Clock     billing.Clock
	JWTSecret string
}

type Server struct {
	app       *fiber.App
	store     *store.Store
	validator *validator.Validate
	payments  *billing.PaymentService
	meters    *billing.MeterBilling
	reports   *report.Service
}

func New(deps Deps) (*Server, error) {
	if deps.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set to serve the API")
	}
	s := &Server{
		store:     deps.Store,
		validator: validator.New(),
		payments:  billing.NewPaymentService(deps.Store, deps.Clock),
		meters:    billing.NewMeterBilling(deps.Store, deps.Clock),
		reports:   report.NewService(deps.Store, deps.Clock),
	}

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	s.app.Use(recover.New())
	s.app.Use(requestID)
	s.app.Use(logger.New(logger.Config{
		Format: "[HTTP] ${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))

	s.routes(deps.JWTSecret)
	return s, nil
}

func (s *Server) routes(secret string) {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := s.app.Group("/api", RequireAuth(secret))

	api.Get("/reports/financial-summary", RequirePermissions(PermViewBill, PermViewPayment), s.financialSummary)
	api.Get("/reports/occupancy", RequirePermissions(PermViewRoom, PermViewTenant), s.occupancy)

	api.Get("/bills", RequirePermissions(PermViewBill), s.listBills)

	api.Post("/rooms", RequirePermissions(PermChangeTenant), s.createRoom)
	api.Post("/tenants", RequirePermissions(PermChangeTenant), s.createTenant)

	api.Post("/payments", RequirePermissions(PermChangePayment), s.createPayment)
	api.Patch("/payments/:id", RequirePermissions(PermChangePayment), s.updatePayment)
	api.Delete("/payments/:id", RequirePermissions(PermChangePayment), s.deletePayment)

	api.Post("/readings", RequirePermissions(PermAddReading), s.createReading)
}

func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	log.Printf("[HTTP] listening on %s", addr)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func requestID(c *fiber.Ctx) error {
	id := c.Get(fiber.HeaderXRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(fiber.HeaderXRequestID, id)
	c.Locals("requestid", id)
	return c.Next()
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal server error"

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code, msg = fe.Code, fe.Message
	case billing.IsValidation(err):
		code, msg = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, billing.ErrNotFound):
		code, msg = fiber.StatusNotFound, err.Error()
	case errors.Is(err, store.ErrDuplicate):
		code, msg = fiber.StatusConflict, err.Error()
	default:
		log.Printf("[HTTP] %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
