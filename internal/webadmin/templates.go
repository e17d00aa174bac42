// ABOUTME: Template rendering functions for admin UI
// ABOUTME: Loads templates from embedded filesystem and renders them

package webadmin

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/2389/nubarmory/internal/assets"
	"github.com/2389/nubarmory/internal/auth"
	"github.com/2389/nubarmory/internal/store"
)

// Template data types
type loginData struct {
	Title string
}

type dashboardData struct {
	Title              string
	Admin              auth.Identity
	ProductCount       int
	ActiveProductCount int
	PendingOrderCount  int
	RecentOrders       []*store.Order
}

type pageTemplates struct {
	login     *template.Template
	dashboard *template.Template
}

var templateFuncs = template.FuncMap{
	"asset": assets.URL,
	"cents": func(c int64) string {
		return fmt.Sprintf("$%d.%02d", c/100, c%100)
	},
}

func mustParseTemplates() *pageTemplates {
	parse := func(page string) *template.Template {
		return template.Must(template.New("base.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/base.html", "templates/"+page))
	}
	return &pageTemplates{
		login:     parse("login.html"),
		dashboard: parse("dashboard.html"),
	}
}

// renderLoginPage renders the login page
func (a *Admin) renderLoginPage(w http.ResponseWriter) {
	data := loginData{
		Title: "Login",
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.templates.login.Execute(w, data); err != nil {
		a.logger.Error("failed to render login page", "error", err)
	}
}

// renderDashboard renders the main dashboard
func (a *Admin) renderDashboard(w http.ResponseWriter, data dashboardData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.templates.dashboard.Execute(w, data); err != nil {
		a.logger.Error("failed to render dashboard", "error", err)
	}
}
