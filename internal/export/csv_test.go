package export

import (
	"bytes"
	"encoding/csv"
	"reflect"
	"testing"
	"time"

	"corralon-jr/internal/domain"

	"github.com/google/uuid"
)

func TestWriteOrdersCSV_StartsWithBOMAndHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOrdersCSV(&buf, nil, nil); err != nil {
		t.Fatalf("WriteOrdersCSV: %v", err)
	}

	out := buf.Bytes()
	if !bytes.HasPrefix(out, utf8BOM) {
		t.Error("output does not start with a UTF-8 BOM")
	}

	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(out, utf8BOM)))
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("parsing produced CSV: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records for empty history, want header only", len(records))
	}
	if !reflect.DeepEqual(records[0], OrdersCSVHeader) {
		t.Errorf("header = %v, want %v", records[0], OrdersCSVHeader)
	}
}

func TestWriteOrdersCSV_EscapesCommasAndQuotes(t *testing.T) {
	userID := uuid.New()
	order := &domain.Order{
		ID:              uuid.New(),
		UserID:          userID,
		Status:          domain.StatusEnviado,
		DeliveryMethod:  domain.DeliveryEnvio,
		ShippingAddress: `Av. 3 de Abril 1450, Corrientes (portón "verde")`,
		Total:           12345.5,
		CreatedAt:       time.Date(2026, time.August, 15, 14, 30, 0, 0, time.Local),
	}
	names := map[string]string{userID.String(): `Pérez, Juan "el Colo"`}

	var buf bytes.Buffer
	if err := WriteOrdersCSV(&buf, []*domain.Order{order}, names); err != nil {
		t.Fatalf("WriteOrdersCSV: %v", err)
	}

	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(buf.Bytes(), utf8BOM)))
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("parsing produced CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want header + 1 row", len(records))
	}

	row := records[1]
	want := []string{
		order.ID.String(),
		`Pérez, Juan "el Colo"`,
		"enviado",
		"15/08/2026 14:30",
		"12345.50",
		"envio",
		`Av. 3 de Abril 1450, Corrientes (portón "verde")`,
	}
	if !reflect.DeepEqual(row, want) {
		t.Errorf("row = %v, want %v", row, want)
	}
}

func TestWriteOrdersCSV_UnknownClientFallsBackToID(t *testing.T) {
	userID := uuid.New()
	order := &domain.Order{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    domain.StatusPendiente,
		CreatedAt: time.Now(),
	}

	var buf bytes.Buffer
	if err := WriteOrdersCSV(&buf, []*domain.Order{order}, map[string]string{}); err != nil {
		t.Fatalf("WriteOrdersCSV: %v", err)
	}

	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(buf.Bytes(), utf8BOM)))
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("parsing produced CSV: %v", err)
	}
	if records[1][1] != userID.String() {
		t.Errorf("cliente column = %q, want the raw user id", records[1][1])
	}
}
