package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/johnwards/menuseed/internal/app"
	"github.com/johnwards/menuseed/internal/catalog"
	"github.com/johnwards/menuseed/internal/domain"
	"github.com/johnwards/menuseed/internal/fetch"
	"github.com/johnwards/menuseed/internal/money"
)

// openCatalog opens the configured stores and returns a catalog over them
// with a close func.
func (c *cli) openCatalog(ctx context.Context) (*catalog.Catalog, func(), error) {
	st, err := app.Open(ctx, c.cfg)
	if err != nil {
		return nil, nil, err
	}
	return catalog.New(st.Rows, c.cfg.Tables), func() { _ = st.Close() }, nil
}

// loadCategories fetches every category through a fetch hook.
func (c *cli) loadCategories(ctx context.Context, cat *catalog.Catalog) ([]domain.CategoryRecord, error) {
	hook := fetch.New(func(ctx context.Context, _ struct{}) ([]domain.CategoryRecord, error) {
		return cat.Categories(ctx)
	}, struct{}{}, fetch.WithLogger(c.log))
	if err := hook.Start(ctx); err != nil {
		return nil, err
	}
	return hook.State().Data, nil
}

func newCategoriesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List menu categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, closeFn, err := c.openCatalog(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			cats, err := c.loadCategories(cmd.Context(), cat)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
			for _, r := range cats {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, r.Name, r.Description)
			}
			return tw.Flush()
		},
	}
}

func newMenuCmd(c *cli) *cobra.Command {
	var q catalog.MenuQuery

	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Query menu items by category and name",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cat, closeFn, err := c.openCatalog(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			cats, err := c.loadCategories(ctx, cat)
			if err != nil {
				return err
			}
			names := make(map[string]string, len(cats))
			for _, r := range cats {
				names[r.ID] = r.Name
				if q.Category != "" && strings.EqualFold(r.Name, q.Category) {
					q.Category = r.ID
				}
			}

			hook := fetch.New(cat.Menu, q, fetch.WithLogger(c.log))
			if err := hook.Start(ctx); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "NAME\tCATEGORY\tPRICE\tRATING\tCALORIES\tPROTEIN")
			for _, m := range hook.State().Data {
				category, ok := names[m.Category]
				if !ok {
					category = m.Category
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%d\t%d\n",
					m.Name, category, money.Format(m.Price), m.Rating, m.Calories, m.Protein)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&q.Category, "category", "", "category name or id")
	cmd.Flags().StringVar(&q.Query, "query", "", "substring of the item name")
	cmd.Flags().IntVar(&q.Limit, "limit", catalog.DefaultMenuLimit, "maximum number of items")
	return cmd
}
