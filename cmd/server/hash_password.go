package main

import (
	"bufio"
	"fmt"
	"strings"

	"eden_passes_backend/internal/services"

	"github.com/spf13/cobra"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print the bcrypt hash for OPERATOR_PASSWORD_HASH",
	Long: `Print the bcrypt hash for OPERATOR_PASSWORD_HASH.

The password is read from the first argument or, when absent, from the first
line of standard input.`,
	Args: cobra.MaximumNArgs(1),
	// Needs no configuration; the hash is produced before auth can be configured.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		var password string
		if len(args) == 1 {
			password = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}

		hash, err := services.HashPassword(password)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}
