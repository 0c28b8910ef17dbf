package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beesaferoot/boardinghouse/internal/models"
)

func RoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Manage rooms",
	}
	cmd.AddCommand(roomAddCmd())
	return cmd
}

func roomAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <room_number> <base_rent>",
		Short: "Add a room",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rent, err := parseDecimal("base_rent", args[1])
			if err != nil {
				return err
			}
			description, _ := cmd.Flags().GetString("description")

			s, _, closeFn, err := getStore()
			if err != nil {
				return err
			}
			defer closeFn()

			room := &models.Room{RoomNumber: args[0], BaseRent: rent, Description: description}
			if err := s.CreateRoom(cmd.Context(), room); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created room %s (ID: %d) with base rent %s\n", room.RoomNumber, room.ID, room.BaseRent.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().String("description", "", "Room description")

	return cmd
}
