//go:build js && wasm

// Command portfolio-wasm drives the scroll-spy navigation and the contact
// form in the browser. The server-rendered page works without it.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"syscall/js"

	"github.com/Zachkp/devfolio/internal/contact"
	"github.com/Zachkp/devfolio/internal/nav"
)

const contactEndpoint = "/api/contact"

var (
	window   = js.Global()
	document = js.Global().Get("document")
)

// domLayout measures the live document.
type domLayout struct{}

func (domLayout) ScrollY() float64       { return window.Get("scrollY").Float() }
func (domLayout) ViewportWidth() float64 { return window.Get("innerWidth").Float() }

func (domLayout) SectionBounds(id nav.SectionID) (nav.Bounds, bool) {
	el := document.Call("getElementById", string(id))
	if el.IsNull() || el.IsUndefined() {
		return nav.Bounds{}, false
	}
	return nav.Bounds{
		Top:    el.Get("offsetTop").Float(),
		Height: el.Get("offsetHeight").Float(),
	}, true
}

func (domLayout) ScrollTo(y float64) {
	opts := js.Global().Get("Object").New()
	opts.Set("top", y)
	opts.Set("behavior", "smooth")
	window.Call("scrollTo", opts)
}

// apiSender relays the form to the server, which owns the mail transport.
type apiSender struct {
	client *http.Client
}

func (s apiSender) Send(ctx context.Context, form contact.Form) (contact.Receipt, error) {
	body, err := json.Marshal(form)
	if err != nil {
		return contact.Receipt{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, contactEndpoint, bytes.NewReader(body))
	if err != nil {
		return contact.Receipt{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return contact.Receipt{}, err
	}
	defer resp.Body.Close()
	text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return contact.Receipt{}, fmt.Errorf("contact api: %d %s", resp.StatusCode, bytes.TrimSpace(text))
	}
	return contact.Receipt{Status: resp.StatusCode, Text: string(text)}, nil
}

func main() {
	// Callbacks must stay referenced for the life of the page.
	var funcs []js.Func
	listen := func(target js.Value, event string, fn func(this js.Value, args []js.Value) any) {
		f := js.FuncOf(fn)
		funcs = append(funcs, f)
		target.Call("addEventListener", event, f)
	}

	tracker := nav.NewTracker(domLayout{}, nav.WithOnChange(renderNav))
	renderNav(tracker.State())

	listen(window, "scroll", func(js.Value, []js.Value) any {
		tracker.HandleScroll()
		return nil
	})
	listen(window, "resize", func(js.Value, []js.Value) any {
		tracker.HandleResize()
		return nil
	})
	if toggle := document.Call("getElementById", "menu-toggle"); !toggle.IsNull() {
		listen(toggle, "click", func(js.Value, []js.Value) any {
			tracker.ToggleMenu()
			return nil
		})
	}
	links := document.Call("querySelectorAll", "[data-nav]")
	for i := 0; i < links.Length(); i++ {
		link := links.Index(i)
		target := nav.SectionID(link.Get("dataset").Get("nav").String())
		listen(link, "click", func(_ js.Value, args []js.Value) any {
			args[0].Call("preventDefault")
			tracker.NavigateTo(target)
			return nil
		})
	}

	if form := document.Call("getElementById", "contact-form"); !form.IsNull() {
		bindContactForm(takeOverForm(form), listen)
	}

	log.Println("portfolio client ready")
	select {}
}

// takeOverForm swaps form for a copy without htmx's listeners so only the
// controller submits it.
func takeOverForm(form js.Value) js.Value {
	clone := form.Call("cloneNode", true)
	for _, attr := range []string{"hx-post", "hx-target", "hx-swap"} {
		clone.Call("removeAttribute", attr)
	}
	form.Call("replaceWith", clone)
	return clone
}

func bindContactForm(form js.Value, listen func(js.Value, string, func(js.Value, []js.Value) any)) {
	view := contactDOM{form: form}
	ctrl := contact.NewController(apiSender{client: http.DefaultClient}, contact.WithObserver(view.render))

	for _, field := range contact.Fields {
		field := field
		input := view.input(field)
		if input.IsNull() {
			continue
		}
		_ = ctrl.UpdateField(field, input.Get("value").String())
		listen(input, "input", func(this js.Value, _ []js.Value) any {
			_ = ctrl.UpdateField(field, this.Get("value").String())
			return nil
		})
	}

	listen(form, "submit", func(_ js.Value, args []js.Value) any {
		args[0].Call("preventDefault")
		view.setText("[data-success]", "")
		// Blocking calls are not allowed inside a js callback.
		go func() {
			if _, err := ctrl.Submit(context.Background()); err == nil {
				view.setText("[data-success]", contact.SuccessNotice)
			}
		}()
		return nil
	})
}

// contactDOM renders controller snapshots into the server-rendered form.
type contactDOM struct {
	form js.Value
}

func (v contactDOM) input(field contact.Field) js.Value {
	return v.form.Call("querySelector", fmt.Sprintf("[name=%q]", string(field)))
}

func (v contactDOM) setText(selector, text string) {
	el := v.form.Call("querySelector", selector)
	if el.IsNull() {
		return
	}
	el.Set("textContent", text)
	el.Set("hidden", text == "")
}

func (v contactDOM) render(snap contact.Snapshot) {
	for _, field := range contact.Fields {
		if input := v.input(field); !input.IsNull() {
			input.Set("value", snap.Form.Get(field))
		}
		if el := v.form.Call("querySelector", fmt.Sprintf("[data-error-for=%q]", string(field))); !el.IsNull() {
			el.Set("textContent", snap.Errors[field])
		}
	}
	v.setText("[data-failure]", snap.Failure)

	button := v.form.Call("querySelector", "#contact-submit")
	if button.IsNull() {
		return
	}
	button.Set("disabled", snap.Sending())
	if snap.Sending() {
		button.Set("textContent", "Sending...")
	} else {
		button.Set("textContent", "send-message")
	}
}

func renderNav(s nav.State) {
	links := document.Call("querySelectorAll", "[data-nav]")
	for i := 0; i < links.Length(); i++ {
		link := links.Index(i)
		active := nav.SectionID(link.Get("dataset").Get("nav").String()) == s.Active
		link.Get("classList").Call("toggle", "is-active", active)
	}
	if menu := document.Call("getElementById", "nav-links"); !menu.IsNull() {
		menu.Get("classList").Call("toggle", "is-open", s.MenuOpen)
	}
	if toggle := document.Call("getElementById", "menu-toggle"); !toggle.IsNull() {
		toggle.Call("setAttribute", "aria-expanded", fmt.Sprint(s.MenuOpen))
	}
}
