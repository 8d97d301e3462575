package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/Skotchmaster/furniture_shop/internal/logging"
	"github.com/Skotchmaster/furniture_shop/pkg/storefront"
)

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func idArg(c *cli.Context, i int, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Args().Get(i))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: want a uuid, got %q", name, c.Args().Get(i))
	}
	return id, nil
}

// reportMerge prints what the login merge did. A pending merge is not a
// failure of the login itself.
func reportMerge(c *cli.Context, res *storefront.ReconcileResult, err error) error {
	if errors.Is(err, storefront.ErrReconcilePending) {
		logging.FromContext(c.Context).Warn("cart merge pending", "error", err)
		fmt.Fprintln(c.App.Writer, "signed in, local cart will be merged on next sync")
		return nil
	}
	if err != nil {
		return err
	}
	acc := session(c).Account()
	fmt.Fprintf(c.App.Writer, "signed in as %s\n", acc.Email)
	if res != nil && res.Applied+res.Replayed > 0 {
		fmt.Fprintf(c.App.Writer, "merged %d cart line(s)\n", res.Applied+res.Replayed)
	}
	if res != nil {
		for _, l := range res.Skipped {
			fmt.Fprintf(c.App.Writer, "dropped unavailable product %s\n", l.ProductID)
		}
	}
	return nil
}

func credentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "email", Required: true},
		&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"SHOPCTL_PASSWORD"}},
	}
}

func registerCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "create an account and sign in",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "phone"},
		}, credentialFlags()...),
		Action: func(c *cli.Context) error {
			res, err := session(c).Register(c.Context, storefront.RegisterInput{
				Email:    c.String("email"),
				Password: c.String("password"),
				Name:     c.String("name"),
				Phone:    c.String("phone"),
			})
			return reportMerge(c, res, err)
		},
	}
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "sign in and merge the local cart into your account",
		Flags: credentialFlags(),
		Action: func(c *cli.Context) error {
			res, err := session(c).Login(c.Context, c.String("email"), c.String("password"))
			return reportMerge(c, res, err)
		},
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "sign out",
		Action: func(c *cli.Context) error {
			if err := session(c).Logout(c.Context); err != nil {
				logging.FromContext(c.Context).Warn("logout", "error", err)
			}
			fmt.Fprintln(c.App.Writer, "signed out")
			return nil
		},
	}
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "show the signed-in account",
		Action: func(c *cli.Context) error {
			sess := session(c)
			acc := sess.Account()
			if acc == nil {
				fmt.Fprintln(c.App.Writer, "not signed in")
				return nil
			}
			fmt.Fprintf(c.App.Writer, "%s <%s> role=%s cart=%s pending_sync=%t\n",
				acc.Name, acc.Email, acc.Role, sess.Source(), sess.PendingSync())
			return nil
		},
	}
}

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "retry merging the local cart into your account",
		Action: func(c *cli.Context) error {
			res, err := session(c).Reconcile(c.Context)
			if err != nil {
				return err
			}
			return reportMerge(c, res, nil)
		},
	}
}

func productsCommand() *cli.Command {
	return &cli.Command{
		Name:  "products",
		Usage: "list or search the catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category"},
			&cli.StringFlag{Name: "material"},
			&cli.StringFlag{Name: "min-price"},
			&cli.StringFlag{Name: "max-price"},
			&cli.StringFlag{Name: "search", Aliases: []string{"q"}, Usage: "full-text search"},
			&cli.IntFlag{Name: "page", Value: 1},
			&cli.IntFlag{Name: "size", Value: 20},
		},
		Action: func(c *cli.Context) error {
			client := session(c).Client()
			var (
				page *storefront.Page[storefront.Product]
				err  error
			)
			if q := c.String("search"); q != "" {
				page, err = client.Search(c.Context, q, c.Int("page"), c.Int("size"))
			} else {
				page, err = client.Products(c.Context, storefront.ProductQuery{
					Category: c.String("category"),
					Material: c.String("material"),
					MinPrice: c.String("min-price"),
					MaxPrice: c.String("max-price"),
					Page:     c.Int("page"),
					Size:     c.Int("size"),
				})
			}
			if err != nil {
				return err
			}

			w := table(c.App.Writer)
			fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tMATERIAL\tPRICE")
			for _, p := range page.Data {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Category, p.Material, p.Price.StringFixed(2))
			}
			fmt.Fprintf(w, "page %d of %d, %d total\n", page.Meta.Page, page.Meta.TotalPages, page.Meta.Total)
			return w.Flush()
		},
	}
}

func cartCommand() *cli.Command {
	return &cli.Command{
		Name:  "cart",
		Usage: "show the cart",
		Action: func(c *cli.Context) error {
			sess := session(c)
			cart, err := sess.Cart(c.Context)
			if err != nil {
				return err
			}
			printCart(c.App.Writer, cart, sess.Source())
			return nil
		},
	}
}

func printCart(out io.Writer, cart *storefront.Cart, src storefront.Source) {
	w := table(out)
	fmt.Fprintln(w, "PRODUCT\tNAME\tQTY\tUNIT\tNOTE")
	for _, l := range cart.Items {
		name, unit := l.ProductName, l.UnitPrice.StringFixed(2)
		if src == storefront.SourceLocal {
			name, unit = "-", "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", l.ProductID, name, l.Quantity, unit, l.Note)
	}
	if src == storefront.SourceServer {
		fmt.Fprintf(w, "%d item(s), subtotal %s\n", cart.ItemCount, cart.Subtotal.StringFixed(2))
	} else {
		fmt.Fprintf(w, "%d item(s) in local cart, sign in to check out\n", cart.ItemCount)
	}
	_ = w.Flush()
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "add a product to the cart",
		ArgsUsage: "<product-id>",
		Flags: []cli.Flag{
			&cli.UintFlag{Name: "qty", Value: 1},
			&cli.StringFlag{Name: "note"},
		},
		Action: func(c *cli.Context) error {
			id, err := idArg(c, 0, "product-id")
			if err != nil {
				return err
			}
			return session(c).Add(c.Context, id, c.Uint("qty"), c.String("note"))
		},
	}
}

func setCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "change the quantity of a cart line, 0 removes it",
		ArgsUsage: "<product-id> <quantity>",
		Action: func(c *cli.Context) error {
			id, err := idArg(c, 0, "product-id")
			if err != nil {
				return err
			}
			qty, err := strconv.ParseUint(c.Args().Get(1), 10, 32)
			if err != nil {
				return fmt.Errorf("quantity: %w", err)
			}
			return session(c).SetQuantity(c.Context, id, uint(qty))
		},
	}
}

func removeCommand() *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "remove a product from the cart",
		ArgsUsage: "<product-id>",
		Action: func(c *cli.Context) error {
			id, err := idArg(c, 0, "product-id")
			if err != nil {
				return err
			}
			return session(c).Remove(c.Context, id)
		},
	}
}

func clearCommand() *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "empty the cart",
		Action: func(c *cli.Context) error {
			return session(c).Clear(c.Context)
		},
	}
}

func checkoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "checkout",
		Usage: "place an order for everything in the cart",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "recipient", Required: true},
			&cli.StringFlag{Name: "phone", Required: true},
			&cli.StringFlag{Name: "address", Required: true},
			&cli.StringFlag{Name: "city", Required: true},
			&cli.StringFlag{Name: "postal-code"},
			&cli.StringFlag{Name: "payment", Value: "cash", Usage: "cash, bank_transfer or card"},
			&cli.StringFlag{Name: "note"},
		},
		Action: func(c *cli.Context) error {
			placed, err := session(c).Checkout(c.Context, storefront.CheckoutInput{
				ShipRecipient:  c.String("recipient"),
				ShipPhone:      c.String("phone"),
				ShipAddress:    c.String("address"),
				ShipCity:       c.String("city"),
				ShipPostalCode: c.String("postal-code"),
				PaymentMethod:  c.String("payment"),
				Note:           c.String("note"),
			})
			if errors.Is(err, storefront.ErrAuthRequired) {
				return errors.New("sign in before checking out, your cart is kept")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "order %s placed: subtotal %s, shipping %s, total %s\n",
				placed.OrderID, placed.Subtotal.StringFixed(2), placed.ShippingFee.StringFixed(2), placed.Total.StringFixed(2))
			return nil
		},
	}
}

func ordersCommand() *cli.Command {
	return &cli.Command{
		Name:  "orders",
		Usage: "list your orders",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "page", Value: 1},
			&cli.IntFlag{Name: "size", Value: 20},
		},
		Action: func(c *cli.Context) error {
			page, err := session(c).Client().Orders(c.Context, c.Int("page"), c.Int("size"))
			if err != nil {
				return err
			}
			w := table(c.App.Writer)
			fmt.Fprintln(w, "ID\tPLACED\tSTATUS\tPAYMENT\tTOTAL")
			for _, o := range page.Data {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", o.ID, o.CreatedAt.Format("2006-01-02"), o.Status, o.PaymentStatus, o.Total.StringFixed(2))
			}
			return w.Flush()
		},
	}
}

func printOrder(out io.Writer, o *storefront.Order) error {
	w := table(out)
	fmt.Fprintf(w, "order %s (%s, payment %s)\n", o.ID, o.Status, o.PaymentStatus)
	fmt.Fprintln(w, "PRODUCT\tQTY\tUNIT\tLINE")
	for _, it := range o.Items {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", it.ProductName, it.Quantity, it.UnitPrice.StringFixed(2), it.LineTotal.StringFixed(2))
	}
	fmt.Fprintf(w, "subtotal %s, shipping %s, total %s\n", o.Subtotal.StringFixed(2), o.ShippingFee.StringFixed(2), o.Total.StringFixed(2))
	return w.Flush()
}

func orderCommand() *cli.Command {
	return &cli.Command{
		Name:      "order",
		Usage:     "show one order",
		ArgsUsage: "<order-id>",
		Action: func(c *cli.Context) error {
			id, err := idArg(c, 0, "order-id")
			if err != nil {
				return err
			}
			o, err := session(c).Client().Order(c.Context, id)
			if err != nil {
				return err
			}
			return printOrder(c.App.Writer, o)
		},
	}
}

func cancelCommand() *cli.Command {
	return &cli.Command{
		Name:      "cancel",
		Usage:     "cancel a pending order",
		ArgsUsage: "<order-id>",
		Action: func(c *cli.Context) error {
			id, err := idArg(c, 0, "order-id")
			if err != nil {
				return err
			}
			o, err := session(c).Client().CancelOrder(c.Context, id)
			if err != nil {
				return err
			}
			return printOrder(c.App.Writer, o)
		},
	}
}
