package main

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sarusarang/crm-extexhnology/session/filestore"
	"github.com/sarusarang/crm-extexhnology/token"
)

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := filestore.New(cfg.GetSessionDir())
			if err != nil {
				return err
			}
			rec, err := store.Read()
			if err != nil {
				return err
			}
			if rec.Empty() {
				fmt.Println("not logged in")
				return nil
			}
			claims, err := token.Decode(rec.Token)
			if err != nil {
				fmt.Println("not logged in (stored token is malformed)")
				return nil
			}
			if !claims.LiveAt(time.Now()) {
				fmt.Println("not logged in (stored token has expired)")
				return nil
			}
			fmt.Printf("name:  %s\n", rec.Name)
			fmt.Printf("role:  %s\n", rec.Role)
			if expiry, ok := claims.ExpiresAt(); ok {
				fmt.Printf("expires: %s\n", expiry.Format(time.RFC3339))
			}
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := filestore.New(cfg.GetSessionDir())
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Println("session cleared")
			return nil
		},
	}
}

func newMktokenCmd() *cobra.Command {
	var (
		name   string
		role   string
		ttl    time.Duration
		secret string
	)

	cmd := &cobra.Command{
		Use:   "mktoken",
		Short: "Mint a signed access token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			claims := jwtlib.MapClaims{
				"exp":       time.Now().Add(ttl).Unix(),
				"name":      name,
				"user_type": role,
				"jti":       uuid.NewString(),
			}
			jwtToken := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
			signed, err := jwtToken.SignedString([]byte(secret))
			if err != nil {
				return fmt.Errorf("jwtToken.SignedString: %w", err)
			}
			fmt.Println(signed)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "Local User", "name claim")
	cmd.Flags().StringVar(&role, "role", "admin", "user_type claim")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	cmd.Flags().StringVar(&secret, "secret", "local-dev-secret", "HMAC signing secret")

	return cmd
}
