// Package cli implements catalogctl, the terminal front end of the catalog.
// Every command drives a view.Controller against the REST API.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"product-catalog-manager/internal/client"
	"product-catalog-manager/internal/domain"
	"product-catalog-manager/internal/view"
)

const defaultAPIURL = "http://localhost:5000"

// API is what the commands need from the catalog client.
type API interface {
	view.API
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

// Options wires the command to its environment. Zero values use the process
// streams and the HTTP client.
type Options struct {
	In     io.Reader
	Out    io.Writer
	Err    io.Writer
	NewAPI func(baseURL string) API
}

type app struct {
	opts   Options
	apiURL string
	yes    bool
}

// NewRootCommand builds the catalogctl command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.NewAPI == nil {
		opts.NewAPI = func(baseURL string) API { return client.New(baseURL, nil) }
	}
	a := &app{opts: opts}

	defaultURL := os.Getenv("CATALOG_API_URL")
	if defaultURL == "" {
		defaultURL = defaultAPIURL
	}

	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Manage the product catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(opts.In)
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)
	root.PersistentFlags().StringVar(&a.apiURL, "api", defaultURL, "catalog API base URL (env CATALOG_API_URL)")

	root.AddCommand(a.listCommand(), a.getCommand(), a.createCommand(), a.editCommand(), a.deleteCommand())
	return root
}

func (a *app) controller(api API) *view.Controller {
	logger := log.New(a.opts.Err, "", 0)
	confirm := func(prompt string) bool {
		if a.yes {
			return true
		}
		fmt.Fprintf(a.opts.Out, "%s [y/N] ", prompt)
		answer, _ := bufio.NewReader(a.opts.In).ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	}
	alert := func(msg string) {
		color.New(color.FgRed, color.Bold).Fprintf(a.opts.Err, "%s\n", msg)
	}
	return view.NewController(api, confirm, alert, logger)
}

func (a *app) listCommand() *cobra.Command {
	var search, order string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products, optionally filtered and sorted by price",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sortOrder, ok := view.ParseSortOrder(order)
			if !ok {
				return fmt.Errorf("invalid --order %q, want asc or desc", order)
			}
			ctl := a.controller(a.opts.NewAPI(a.apiURL))
			if err := ctl.Load(cmd.Context()); err != nil {
				return err
			}
			ctl.SetSearch(search)
			ctl.SetOrder(sortOrder)
			renderList(a.opts.Out, ctl.State().Visible())
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "filter by name, category, description or price")
	cmd.Flags().StringVarP(&order, "order", "o", string(view.SortAsc), "sort by price: asc or desc")
	return cmd
}

func (a *app) getCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.opts.NewAPI(a.apiURL).GetProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderCard(a.opts.Out, *p)
			return nil
		},
	}
}

func formFlags(cmd *cobra.Command, form *view.Form) {
	cmd.Flags().StringVar(&form.Name, "name", "", "product name")
	cmd.Flags().StringVar(&form.Price, "price", "", "product price")
	cmd.Flags().StringVar(&form.Description, "description", "", "product description")
	cmd.Flags().StringVar(&form.Category, "category", "", "product category")
}

func (a *app) createCommand() *cobra.Command {
	var form view.Form
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctl := a.controller(a.opts.NewAPI(a.apiURL))
			ctl.SetForm(form)
			if err := ctl.Submit(cmd.Context()); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprint(a.opts.Out, "✓ ")
			fmt.Fprintf(a.opts.Out, "Product added: %s\n", form.Name)
			return nil
		},
	}
	formFlags(cmd, &form)
	return cmd
}

func (a *app) editCommand() *cobra.Command {
	var form view.Form
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Update a product; only the given fields change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl := a.controller(a.opts.NewAPI(a.apiURL))
			if err := ctl.Load(cmd.Context()); err != nil {
				return err
			}
			var target *domain.Product
			for _, p := range ctl.State().Products() {
				if p.ID == args[0] {
					p := p
					target = &p
					break
				}
			}
			if target == nil {
				return fmt.Errorf("product %s not found", args[0])
			}

			ctl.Edit(*target)
			current := ctl.State().Form()
			flags := cmd.Flags()
			if flags.Changed("name") {
				current.Name = form.Name
			}
			if flags.Changed("price") {
				current.Price = form.Price
			}
			if flags.Changed("description") {
				current.Description = form.Description
			}
			if flags.Changed("category") {
				current.Category = form.Category
			}
			ctl.SetForm(current)

			if err := ctl.Submit(cmd.Context()); err != nil {
				return err
			}
			color.New(color.FgGreen).Fprint(a.opts.Out, "✓ ")
			fmt.Fprintf(a.opts.Out, "Product updated: %s\n", current.Name)
			return nil
		},
	}
	formFlags(cmd, &form)
	return cmd
}

func (a *app) deleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a product after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctl := a.controller(a.opts.NewAPI(a.apiURL))
			sent, err := ctl.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !sent {
				fmt.Fprintln(a.opts.Out, "Cancelled.")
				return nil
			}
			color.New(color.FgGreen).Fprint(a.opts.Out, "✓ ")
			fmt.Fprintln(a.opts.Out, "Product deleted")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&a.yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
