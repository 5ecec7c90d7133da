package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"product-catalog-manager/internal/domain"
	"product-catalog-manager/internal/view"
)

func renderList(w io.Writer, products []domain.Product) {
	if len(products) == 0 {
		color.New(color.FgYellow).Fprintln(w, "No products found.")
		return
	}
	for i, p := range products {
		if i > 0 {
			fmt.Fprintln(w)
		}
		renderCard(w, p)
	}
}

// renderCard prints one product:
//
//	Widget [Tools]
//	  Turns bolts
//	  $5  id=...
func renderCard(w io.Writer, p domain.Product) {
	color.New(color.FgCyan, color.Bold).Fprint(w, p.Name)
	color.New(color.FgMagenta).Fprintf(w, " [%s]\n", p.Category)
	fmt.Fprintf(w, "  %s\n", p.Description)
	color.New(color.FgGreen).Fprintf(w, "  $%s", view.FormatPrice(p.Price))
	fmt.Fprintf(w, "  id=%s\n", p.ID)
}
