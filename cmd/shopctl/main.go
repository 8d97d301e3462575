// Command shopctl is a terminal client for the furniture shop. It keeps an
// anonymous cart on disk and merges it into the account cart on login.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/Skotchmaster/furniture_shop/internal/logging"
	"github.com/Skotchmaster/furniture_shop/pkg/storefront"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "shopctl:", err)
		os.Exit(1)
	}
}

func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".furniture_shop"
	}
	return filepath.Join(dir, "furniture_shop")
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "shopctl",
		Usage: "browse the furniture shop, manage your cart and orders",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api",
				Usage:   "shop API base URL",
				Value:   "http://localhost:8080",
				EnvVars: []string{"SHOPCTL_API"},
			},
			&cli.StringFlag{
				Name:    "state-dir",
				Usage:   "where the local cart and credentials are kept",
				Value:   defaultStateDir(),
				EnvVars: []string{"SHOPCTL_STATE_DIR"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				EnvVars: []string{"SHOPCTL_LOG_LEVEL"},
			},
		},
		Before: openSession,
		Commands: []*cli.Command{
			registerCommand(),
			loginCommand(),
			logoutCommand(),
			whoamiCommand(),
			syncCommand(),
			productsCommand(),
			cartCommand(),
			addCommand(),
			setCommand(),
			removeCommand(),
			clearCommand(),
			checkoutCommand(),
			ordersCommand(),
			orderCommand(),
			cancelCommand(),
		},
	}
}

const sessionKey = "session"

// openSession restores the shopper's state before any command runs. An
// unfinished cart merge is retried here; failing it again is only a warning.
func openSession(c *cli.Context) error {
	logger := logging.NewWithWriter(c.String("log-level"), c.App.ErrWriter)
	c.Context = logging.IntoContext(c.Context, logger)

	store, err := storefront.NewFileStore(c.String("state-dir"))
	if err != nil {
		return err
	}
	sess, err := storefront.NewSession(storefront.NewClient(c.String("api")), store)
	if err != nil {
		return err
	}
	c.App.Metadata = map[string]any{sessionKey: sess}

	if _, err := sess.Resume(c.Context); err != nil {
		if !errors.Is(err, storefront.ErrReconcilePending) {
			logger.Warn("resume session", "error", err)
		} else {
			logger.Warn("cart not synced yet, local cart kept", "error", err)
		}
	}
	return nil
}

func session(c *cli.Context) *storefront.Session {
	return c.App.Metadata[sessionKey].(*storefront.Session)
}
