package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/oksasatya/vendor-directory/config"
	"github.com/oksasatya/vendor-directory/internal/application"
	"github.com/oksasatya/vendor-directory/internal/container"
	"github.com/oksasatya/vendor-directory/internal/domain/entity"
	"github.com/oksasatya/vendor-directory/internal/domain/state"
	"github.com/oksasatya/vendor-directory/internal/infrastructure/memory"
	"github.com/oksasatya/vendor-directory/pkg/helpers"
	"github.com/oksasatya/vendor-directory/pkg/mailer"
)

const cliSession = "directoryctl"

// console is an administrative session signed in as the MASTER account.
type console struct {
	rdb     *redis.Client
	stores  *container.Stores
	svc     container.Services
	session *application.Session
}

func openConsole(ctx context.Context) (*console, error) {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-ctl", cfg.Env)

	// writes are announced on the Redis feed so running servers pick them up
	rdb := container.ConnectRedis(cfg, logger)
	stores, err := container.OpenStores(cfg, rdb, logger)
	if err != nil {
		closeRedis(rdb)
		return nil, err
	}
	deps := &application.Deps{
		Notifier:      mailer.LogNotifier{Logger: logger},
		Challenges:    memory.NewChallengeStore(),
		Logger:        logger,
		HashPasswords: cfg.PasswordHashing,
	}
	jwt := helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	svc := container.BuildServices(cfg, stores, deps, nil, jwt)

	s, err := svc.Sessions.Get(ctx, cliSession)
	if err != nil {
		svc.Sessions.Close()
		stores.Close()
		closeRedis(rdb)
		return nil, err
	}
	master, ok := s.State().UserByEmail(cfg.MasterEmail)
	if !ok {
		svc.Sessions.Close()
		stores.Close()
		closeRedis(rdb)
		return nil, fmt.Errorf("master account %q not found", cfg.MasterEmail)
	}
	s.Dispatch(state.Login{User: master})
	return &console{rdb: rdb, stores: stores, svc: svc, session: s}, nil
}

// close flushes queued writes before releasing the stores.
func (c *console) close() {
	c.session.Wait()
	c.svc.Sessions.Close()
	c.stores.Close()
	closeRedis(c.rdb)
}

func closeRedis(rdb *redis.Client) {
	if rdb != nil {
		_ = rdb.Close()
	}
}

func (c *console) userByEmail(email string) (entity.User, error) {
	u, ok := c.session.State().UserByEmail(email)
	if !ok {
		return entity.User{}, application.ErrUserNotFound
	}
	return u, nil
}

// run opens a console, runs fn and reports the first persistence failure.
func run(cmd *cobra.Command, fn func(ctx context.Context, c *console) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()
	c, err := openConsole(ctx)
	if err != nil {
		return err
	}
	if err := fn(ctx, c); err != nil {
		c.close()
		return err
	}
	c.close()
	select {
	case f := <-c.session.Failures():
		return fmt.Errorf("%s not persisted: %w", f.Command.Kind, f.Err)
	default:
		return nil
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "directoryctl",
		Short:         "Administer the vendor directory as the MASTER account",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(&cobra.Command{
		Use:   "ban <cpf|cnpj|email>",
		Short: "Add a document or email to the deny-list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, c *console) error {
				if err := c.svc.Admin.Ban(ctx, c.session, args[0], true); err != nil {
					return err
				}
				cmd.Printf("banned %s\n", args[0])
				return nil
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "unban <cpf|cnpj|email>",
		Short: "Remove a value from the deny-list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, c *console) error {
				if err := c.svc.Admin.Unban(ctx, c.session, args[0]); err != nil {
					return err
				}
				cmd.Printf("unbanned %s\n", args[0])
				return nil
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "unlock <email>",
		Short: "Clear the failed-login counter and lock of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, c *console) error {
				u, err := c.userByEmail(args[0])
				if err != nil {
					return err
				}
				if err := c.svc.Admin.UnlockUser(ctx, c.session, u.ID); err != nil {
					return err
				}
				cmd.Printf("unlocked %s\n", u.Email)
				return nil
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "reset-password <email>",
		Short: "Set the recovery password on an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, c *console) error {
				u, err := c.userByEmail(args[0])
				if err != nil {
					return err
				}
				if err := c.svc.Admin.MasterResetPassword(ctx, c.session, u.ID, true); err != nil {
					return err
				}
				cmd.Printf("password of %s reset to the recovery password\n", u.Email)
				return nil
			})
		},
	})

	var days int
	feature := &cobra.Command{
		Use:   "feature <vendor-id>",
		Short: "Promote a listing for a number of days (0 ends the promotion)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, c *console) error {
				until, err := c.svc.Admin.FeatureVendor(ctx, c.session, args[0], days)
				if err != nil {
					return err
				}
				if until == 0 {
					cmd.Printf("promotion of %s ended\n", args[0])
					return nil
				}
				cmd.Printf("%s featured until %s\n", args[0], time.UnixMilli(until).Format(time.RFC3339))
				return nil
			})
		},
	}
	feature.Flags().IntVar(&days, "days", 7, "promotion length in days")
	root.AddCommand(feature)

	root.AddCommand(&cobra.Command{
		Use:   "users",
		Short: "List accounts with their role and lock status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, c *console) error {
				now := time.Now()
				for _, u := range c.session.State().Users {
					status := "active"
					if u.IsLocked(now) {
						status = "locked " + u.LockRemaining(now).Round(time.Second).String()
					}
					cmd.Printf("%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Type, status)
				}
				return nil
			})
		},
	})

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
