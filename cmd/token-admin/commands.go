package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/iyhunko/inventory-service/internal/model"
	"github.com/iyhunko/inventory-service/internal/repository"
	"github.com/spf13/cobra"
)

const nameFlag = "name"

func newRootCommand(tokens repository.TokenRepository) *cobra.Command {
	root := &cobra.Command{
		Use:          "token-admin",
		Short:        "Manage bearer tokens accepted by the product API",
		SilenceUsage: true,
	}
	root.AddCommand(newCreateCommand(tokens), newRevokeCommand(tokens))
	return root
}

func newCreateCommand(tokens repository.TokenRepository) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Issue a new token and print it once",
		Example: `  token-admin create --name frontend`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name, err := cmd.Flags().GetString(nameFlag)
			if err != nil {
				return err
			}

			token, plain, err := model.NewAPIToken(name)
			if err != nil {
				return err
			}
			if err := tokens.Create(cmd.Context(), token); err != nil {
				return fmt.Errorf("failed to store token: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "id:    %s\n", token.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "token: %s\n", plain)
			return nil
		},
	}
	cmd.Flags().String(nameFlag, "", "Name of the client the token is issued to (required)")
	_ = cmd.MarkFlagRequired(nameFlag)
	return cmd
}

func newRevokeCommand(tokens repository.TokenRepository) *cobra.Command {
	return &cobra.Command{
		Use:     "revoke <id>",
		Short:   "Revoke a token by ID",
		Example: `  token-admin revoke 6f1c7d0e-4b8e-4a53-9d0c-2d8a3c9f1b27`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid token id: %w", err)
			}
			if err := tokens.DeleteByID(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to revoke token: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "revoked %s\n", id)
			return nil
		},
	}
}
