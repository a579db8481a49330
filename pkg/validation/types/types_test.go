package types

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/biyonik/ticketbox-core/pkg/validation"
)

func decode(t *testing.T, body string) map[string]any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	data := map[string]any{}
	if err := dec.Decode(&data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return data
}

func ticketSchema() validation.Schema {
	return validation.Make().Shape(map[string]validation.Type{
		"type":       String().Required().Trim().Max(100),
		"unit_price": Decimal().Required().NonNegative().Places(2),
		"capacity":   Integer().Required().Min(1),
		"min_qty":    Integer().Required().Min(1),
		"max_qty":    Integer().Required().Min(1),
		"start_sale": Date().Required(),
		"end_sale":   Date().Required(),
		"relations":  Array().Elements(Integer().Min(1)),
	}).
		CrossValidate(validation.DateOrder("start_sale", "end_sale", "satış bitişi başlangıçtan sonra olmalı")).
		CrossValidate(validation.MaxNotBelowMin("min_qty", "max_qty", "max_qty min_qty'den küçük olamaz"))
}

func TestSchema_ValidTicketPayload(t *testing.T) {
	result := ticketSchema().Validate(decode(t, `{
		"type": "  VIP ",
		"unit_price": "149.90",
		"capacity": 100,
		"min_qty": 1,
		"max_qty": 4,
		"start_sale": "2030-05-01T14:00:00+03:00",
		"end_sale": "2030-05-09T12:00:00Z",
		"relations": [1, 2]
	}`))
	if result.HasErrors() {
		t.Fatalf("unexpected errors: %v", result.Errors())
	}

	data := result.ValidData()
	if data["type"] != "VIP" {
		t.Errorf("type = %q", data["type"])
	}
	if price := data["unit_price"].(decimal.Decimal); !price.Equal(decimal.RequireFromString("149.9")) {
		t.Errorf("unit_price = %s", price)
	}
	if data["capacity"] != int64(100) {
		t.Errorf("capacity = %#v", data["capacity"])
	}
	start := data["start_sale"].(time.Time)
	if start.Location() != time.UTC || start.Hour() != 11 {
		t.Errorf("start_sale = %v", start)
	}
	if ids := Int64s(data["relations"]); len(ids) != 2 || ids[1] != 2 {
		t.Errorf("relations = %v", ids)
	}
}

func TestSchema_FieldErrors(t *testing.T) {
	result := ticketSchema().Validate(decode(t, `{
		"type": "",
		"unit_price": "-1.005",
		"capacity": 2.5,
		"min_qty": 0,
		"max_qty": 1,
		"start_sale": "yarın",
		"end_sale": "2030-05-09T12:00:00Z",
		"relations": [0]
	}`))

	errs := result.Errors()
	for _, field := range []string{"type", "unit_price", "capacity", "min_qty", "start_sale", "relations[0]"} {
		if len(errs[field]) == 0 {
			t.Errorf("expected error for %s, got %v", field, errs)
		}
	}
	if len(errs["unit_price"]) != 2 {
		t.Errorf("unit_price errors = %v", errs["unit_price"])
	}
	if _, ok := errs["end_sale"]; ok {
		t.Errorf("end_sale must be valid: %v", errs["end_sale"])
	}
}

func TestSchema_CrossValidation(t *testing.T) {
	result := ticketSchema().Validate(decode(t, `{
		"type": "Standart",
		"unit_price": 10,
		"capacity": 10,
		"min_qty": 5,
		"max_qty": 2,
		"start_sale": "2030-05-09T12:00:00Z",
		"end_sale": "2030-05-01T12:00:00Z"
	}`))

	errs := result.Errors()
	if len(errs["end_sale"]) != 1 || len(errs["max_qty"]) != 1 {
		t.Fatalf("errors = %v", errs)
	}
	if len(result.ValidData()) != 0 {
		t.Error("valid data must stay empty when validation fails")
	}
}

func TestSchema_OptionalFieldsStayNil(t *testing.T) {
	schema := validation.Make().Shape(map[string]validation.Type{
		"name":   String().Trim().Min(1),
		"online": Boolean(),
		"email":  String().Trim().Lower().Email(),
	})

	result := schema.Validate(decode(t, `{"email": " Ayse@Example.COM "}`))
	if result.HasErrors() {
		t.Fatalf("errors = %v", result.Errors())
	}
	data := result.ValidData()
	if data["name"] != nil || data["online"] != nil {
		t.Errorf("absent fields must be nil: %v", data)
	}
	if data["email"] != "ayse@example.com" {
		t.Errorf("email = %q", data["email"])
	}

	result = schema.Validate(decode(t, `{"online": "yes", "email": "not-an-email"}`))
	if len(result.Errors()["online"]) == 0 || len(result.Errors()["email"]) == 0 {
		t.Errorf("errors = %v", result.Errors())
	}
}

func TestString_OneOfAndRuneLength(t *testing.T) {
	schema := validation.Make().Shape(map[string]validation.Type{
		"role": String().Required().OneOf("USER", "APPROVER", "ADMIN"),
		"city": String().Max(8),
	})

	result := schema.Validate(map[string]any{"role": "ROOT", "city": "Çanakkale"})
	if len(result.Errors()["role"]) != 1 || len(result.Errors()["city"]) != 1 {
		t.Errorf("errors = %v", result.Errors())
	}

	result = schema.Validate(map[string]any{"role": "ADMIN", "city": "İzmir"})
	if result.HasErrors() {
		t.Errorf("errors = %v", result.Errors())
	}
}
