package config

import (
	"reflect"
	"testing"
)

func TestInitialStateNamespaces(t *testing.T) {
	p := LaunchParams{
		Email:           "Jane@Example.com",
		CustomerID:      "cust-42",
		RelatedIDs:      "order-1, order-2,,ticket-9",
		WidgetSessionID: "widget-7",
		Host:            "shop.example.com",
		Page:            "/sofas",
		Referrer:        "https://google.com",
		UTMSource:       "newsletter",
	}

	state := p.InitialState()

	if got := state["user:email"]; got != "jane@example.com" {
		t.Errorf("user:email = %v, want normalized email", got)
	}
	if got := state["user:customer_id"]; got != "cust-42" {
		t.Errorf("user:customer_id = %v", got)
	}
	if got := state["user:widget_session_id"]; got != "widget-7" {
		t.Errorf("user:widget_session_id = %v", got)
	}
	wantIDs := []string{"order-1", "order-2", "ticket-9"}
	if got := state["user:related_ids"]; !reflect.DeepEqual(got, wantIDs) {
		t.Errorf("user:related_ids = %v, want %v", got, wantIDs)
	}
	if got := state["context:host"]; got != "shop.example.com" {
		t.Errorf("context:host = %v", got)
	}
	if got := state["context:utm_source"]; got != "newsletter" {
		t.Errorf("context:utm_source = %v", got)
	}
}

func TestInitialStateOmitsEmpty(t *testing.T) {
	state := LaunchParams{Page: "/contact"}.InitialState()

	if len(state) != 1 {
		t.Errorf("state has %d keys, want 1: %v", len(state), state)
	}
	if _, present := state["user:email"]; present {
		t.Error("empty email must be omitted")
	}
	if _, present := state["user:related_ids"]; present {
		t.Error("empty related ids must be omitted")
	}
}

func TestInitialStateEmpty(t *testing.T) {
	if state := (LaunchParams{}).InitialState(); len(state) != 0 {
		t.Errorf("empty launch params produced state: %v", state)
	}
}
