package logging

import (
	"encoding/json"
	"log"
	"time"
)

const service = "sales-service"

// Fields is one structured log line. Empty fields are omitted.
type Fields struct {
	SaleID      int64  `json:"sale_id,omitempty"`
	PatientRUT  string `json:"patient_rut,omitempty"`
	InventoryID int64  `json:"inventory_id,omitempty"`
	EventID     string `json:"event_id,omitempty"`
	Step        string `json:"step,omitempty"`
	Status      string `json:"status,omitempty"`
	DurationMS  int64  `json:"duration_ms,omitempty"`
	Message     string `json:"message,omitempty"`
	Error       string `json:"error,omitempty"`
}

type line struct {
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
	Fields
}

// Log writes fields as a single JSON object through the standard logger.
func Log(fields Fields) {
	data, err := json.Marshal(line{
		Service:   service,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Fields:    fields,
	})
	if err != nil {
		log.Printf("{\"service\":%q,\"status\":\"log_error\",\"error\":%q}", service, err.Error())
		return
	}
	log.Print(string(data))
}

// Err returns err's message, or "" for nil.
func Err(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
