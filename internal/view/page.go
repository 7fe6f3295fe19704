package view

import (
	"html/template"

	"github.com/shopspring/decimal"
)

// Page names.
const (
	PageHome    = "home"
	PageCatalog = "catalog"
	PageContact = "contact"
)

// Grid loading states.
const (
	GridLoading = "loading"
	GridReady   = "ready"
	GridError   = "error"
)

// Grid placeholder texts.
const (
	GridLoadingMessage = "Cargando productos..."
	GridErrorMessage   = "No se pudieron cargar los productos. Recargá la página más tarde."
)

// Page is the data for a full storefront page.
type Page struct {
	Name      string
	Title     string
	StoreName string
	Path      string
	Year      int
	Cart      State
	Featured  []Card
	Grid      Grid
	Contact   ContactForm
}

// Card is a product card with an add-to-cart control.
type Card struct {
	Name        string
	Price       decimal.Decimal
	Image       string
	Description template.HTML
}

// placedCard is a Card rendered on the page at Return, where the add-to-cart
// form sends the shopper back.
type placedCard struct {
	Card
	Return string
}

func placeCard(c Card, path string) placedCard {
	return placedCard{Card: c, Return: path}
}

// Grid is the remote catalog section.
type Grid struct {
	State string
	Cards []Card
}

// ContactForm is the contact section: current values and status line.
type ContactForm struct {
	Nombre      string
	Email       string
	Asunto      string
	Mensaje     string
	StatusText  string
	StatusClass string
}
