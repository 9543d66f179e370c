package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"corralon-jr/internal/domain"
)

// OrdersCSVHeader is the fixed column layout of the orders export.
var OrdersCSVHeader = []string{"id", "cliente", "estado", "fecha", "total", "metodo_entrega", "direccion_envio"}

// utf8BOM makes spreadsheet applications detect the encoding correctly.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOrdersCSV renders the order history as CSV. Values containing commas
// or quotes are escaped per RFC 4180 by the encoding/csv writer; the output
// starts with a UTF-8 byte-order mark.
func WriteOrdersCSV(w io.Writer, orders []*domain.Order, clientNames map[string]string) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	cw := csv.NewWriter(w)

	if err := cw.Write(OrdersCSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, order := range orders {
		client, ok := clientNames[order.UserID.String()]
		if !ok {
			client = order.UserID.String()
		}

		record := []string{
			order.ID.String(),
			client,
			string(order.Status),
			order.CreatedAt.Format("02/01/2006 15:04"),
			fmt.Sprintf("%.2f", order.Total),
			order.DeliveryMethod,
			order.ShippingAddress,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
