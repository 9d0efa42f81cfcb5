package browser_test

import (
	"strings"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
)

// TestClient_ReserveAndCancel books the only schedule with capacity, then cancels it.
func TestClient_ReserveAndCancel(t *testing.T) {
	app := newTestApp(t)
	page := app.newPage(t)
	app.login(t, page, "ana", "/cliente/dashboard")
	app.goTo(t, page, "/cliente/horarios")

	if n, _ := page.Locator("form[action='/cliente/horarios/2/reservar']").Count(); n != 0 {
		t.Fatal("full schedule offered for booking")
	}
	if err := page.Locator("form[action='/cliente/horarios/1/reservar'] button").Click(); err != nil {
		t.Fatalf("failed to click Reservar: %v", err)
	}
	if err := page.WaitForURL(app.BaseURL + "/cliente/reservas?ok=reservada"); err != nil {
		t.Fatalf("booking did not land on reservations: %v", err)
	}
	if len(app.Sender.Sent()) != 1 {
		t.Errorf("receipts sent = %d, want 1", len(app.Sender.Sent()))
	}

	app.Backend.mu.Lock()
	id := itoa(app.Backend.nextID)
	app.Backend.mu.Unlock()
	cancel := page.Locator("form[action='/cliente/reservas/" + id + "/cancelar'] button")
	if err := cancel.Click(); err != nil {
		t.Fatalf("failed to click Cancelar: %v", err)
	}
	if err := page.WaitForURL(app.BaseURL + "/cliente/reservas?ok=cancelada"); err != nil {
		t.Fatalf("cancel did not return to reservations: %v", err)
	}
	if n, _ := cancel.Count(); n != 0 {
		t.Error("cancelled reservation still offers Cancelar")
	}

	app.Backend.mu.Lock()
	defer app.Backend.mu.Unlock()
	if len(app.Backend.reservas) != 1 || app.Backend.reservas[0]["estado"] != "Cancelada" {
		t.Errorf("backend reservations = %+v", app.Backend.reservas)
	}
}

// TestClient_CheckoutRedirect verifies Pagar lands on the hosted checkout page.
func TestClient_CheckoutRedirect(t *testing.T) {
	app := newTestApp(t)
	page := app.newPage(t)
	app.login(t, page, "ana", "/cliente/dashboard")
	app.goTo(t, page, "/cliente/suscripciones")

	if err := page.Locator("form[action='/cliente/pagar'] button").First().Click(); err != nil {
		t.Fatalf("failed to click Pagar: %v", err)
	}
	if err := page.WaitForURL("**/checkout/session"); err != nil {
		t.Fatalf("did not reach checkout: %v", err)
	}
}

// TestClient_CheckoutWithoutURL verifies the catalog stays put when no checkout URL comes back.
func TestClient_CheckoutWithoutURL(t *testing.T) {
	app := newTestApp(t)
	app.Backend.mu.Lock()
	app.Backend.checkoutURL = ""
	app.Backend.mu.Unlock()
	page := app.newPage(t)
	app.login(t, page, "ana", "/cliente/dashboard")
	app.goTo(t, page, "/cliente/suscripciones")

	if err := page.Locator("form[action='/cliente/pagar'] button").First().Click(); err != nil {
		t.Fatalf("failed to click Pagar: %v", err)
	}
	text, err := page.Locator(".alert-error").TextContent()
	if err != nil {
		t.Fatalf("no error banner: %v", err)
	}
	if !strings.Contains(text, "No se pudo iniciar el pago.") {
		t.Errorf("banner = %q", text)
	}
	if !strings.HasPrefix(page.URL(), app.BaseURL) {
		t.Errorf("left the site: %s", page.URL())
	}
}

// TestNutricionista_IMCPreview verifies the antecedent form fills the BMI as values are typed.
func TestNutricionista_IMCPreview(t *testing.T) {
	app := newTestApp(t)
	page := app.newPage(t)
	app.login(t, page, "nora", "/nutricionista/dashboard")
	app.goTo(t, page, "/nutricionista/antecedentes/nuevo")

	if err := page.Locator("input[name=peso]").Fill("70"); err != nil {
		t.Fatalf("fill peso: %v", err)
	}
	if err := page.Locator("input[name=altura]").Fill("1.75"); err != nil {
		t.Fatalf("fill altura: %v", err)
	}
	imc := page.Locator("input[name=imc]")
	var shown string
	for i := 0; i < 30 && shown != "22.86"; i++ {
		time.Sleep(100 * time.Millisecond)
		shown, _ = imc.InputValue()
	}
	if shown != "22.86" {
		t.Fatalf("imc = %q, want 22.86", shown)
	}

	if _, err := page.Locator("select[name=cliente]").SelectOption(playwright.SelectOptionValues{Values: &[]string{"7"}}); err != nil {
		t.Fatalf("select cliente: %v", err)
	}
	if err := page.Locator("form.resource-form button[type=submit]").Click(); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := page.WaitForURL(app.BaseURL + "/nutricionista/antecedentes?ok=creado"); err != nil {
		t.Fatalf("create did not return to the list: %v", err)
	}

	app.Backend.mu.Lock()
	defer app.Backend.mu.Unlock()
	if len(app.Backend.antecedentes) != 1 {
		t.Fatalf("antecedentes = %d, want 1", len(app.Backend.antecedentes))
	}
	got := app.Backend.antecedentes[0]
	if got["imc"] != 22.86 || got["nutricionista"] != float64(4) {
		t.Errorf("stored = %+v", got)
	}
}
