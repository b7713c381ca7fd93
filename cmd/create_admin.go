package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/gas-utility-service/internal/repository"
	"github.com/spec-kit/gas-utility-service/internal/service"
	apperrors "github.com/spec-kit/gas-utility-service/pkg/util/errorutil"
)

var createAdminOpts struct {
	username string
	email    string
	name     string
	password string
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create a superuser account",
	Long:  "Create a superuser account. The password may be given with --password or the ADMIN_PASSWORD environment variable.",
	RunE:  runCreateAdmin,
}

func init() {
	flags := createAdminCmd.Flags()
	flags.StringVar(&createAdminOpts.username, "username", "", "login name (required)")
	flags.StringVar(&createAdminOpts.email, "email", "", "email address (required)")
	flags.StringVar(&createAdminOpts.name, "name", "Administrator", "display name")
	flags.StringVar(&createAdminOpts.password, "password", "", "password (defaults to $ADMIN_PASSWORD)")
	_ = createAdminCmd.MarkFlagRequired("username")
	_ = createAdminCmd.MarkFlagRequired("email")
}

func runCreateAdmin(cmd *cobra.Command, _ []string) error {
	password := createAdminOpts.password
	if password == "" {
		password = os.Getenv("ADMIN_PASSWORD")
	}
	if password == "" {
		return errors.New("a password is required (--password or ADMIN_PASSWORD)")
	}

	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	pg, err := openPostgres(cmd.Context(), cfg, logger, cfg.Postgres.RunMigrations)
	if err != nil {
		return err
	}
	defer pg.Close()

	accounts := service.NewAccountService(*cfg, service.AccountDependencies{
		AccountRepo: repository.NewAccountRepository(pg.PoolHandle()),
		Logger:      logger,
	})
	account, err := accounts.CreateSuperuser(cmd.Context(), service.RegistrationInput{
		Username:  createAdminOpts.username,
		Email:     createAdminOpts.email,
		Name:      createAdminOpts.name,
		Password1: password,
		Password2: password,
	})
	if err != nil {
		var domainErr *apperrors.DomainError
		if errors.As(err, &domainErr) && len(domainErr.Fields) > 0 {
			for field, messages := range domainErr.Fields {
				for _, msg := range messages {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", field, msg)
				}
			}
		}
		return fmt.Errorf("create admin: %w", err)
	}

	logger.Info("superuser created",
		zap.Int64("account_id", account.ID),
		zap.String("username", account.Username),
		zap.String("customer_id", account.CustomerID))
	fmt.Fprintf(cmd.OutOrStdout(), "created superuser %s (%s)\n", account.Username, account.CustomerID)
	return nil
}
