package assistant

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/assurlink/courtage/internal/domain"
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Claim is the structured content of a claim declaration
type Claim struct {
	PolicyNumber    string           `json:"policy_number"`
	ClaimantName    string           `json:"claimant_name,omitempty"`
	IncidentDate    string           `json:"incident_date"`
	IncidentType    string           `json:"incident_type"`
	Location        string           `json:"location,omitempty"`
	Description     string           `json:"description,omitempty"`
	EstimatedAmount *decimal.Decimal `json:"estimated_amount,omitempty"`
	VehiclePlate    string           `json:"vehicle_plate,omitempty"`
}

// claimWire tolerates loosely typed model output
type claimWire struct {
	PolicyNumber    wireText    `json:"policy_number"`
	ClaimantName    wireText    `json:"claimant_name"`
	IncidentDate    wireText    `json:"incident_date"`
	IncidentType    wireText    `json:"incident_type"`
	Location        wireText    `json:"location"`
	Description     wireText    `json:"description"`
	EstimatedAmount interface{} `json:"estimated_amount"`
	VehiclePlate    wireText    `json:"vehicle_plate"`
}

// wireText reads a JSON string, number or boolean as text. Null, objects
// and arrays read as empty.
type wireText string

func (t *wireText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		*t = ""
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = wireText(s)
	case '{', '[', 'n':
		*t = ""
	default:
		*t = wireText(b)
	}
	return nil
}

func (t wireText) trim() string { return strings.TrimSpace(string(t)) }

var documentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"image/heic":      true,
}

// SupportedDocument reports whether mimeType can be sent for extraction
func SupportedDocument(mimeType string) bool {
	return documentTypes[strings.ToLower(strings.TrimSpace(mimeType))]
}

const claimSystem = `Tu es un assistant de gestion de sinistres pour un courtier en assurance au Sénégal.
Tu lis des déclarations de sinistre (constats, photos, courriers) et tu extrais les informations demandées.
Réponds uniquement avec un objet JSON, sans commentaire.`

const claimInstruction = `Extrais de ce document les champs suivants et renvoie un objet JSON avec exactement ces clés :
- "policy_number" : numéro de police
- "claimant_name" : nom du déclarant
- "incident_date" : date du sinistre au format AAAA-MM-JJ
- "incident_type" : nature du sinistre (accident, vol, incendie, bris_de_glace, deces, autre)
- "location" : lieu du sinistre
- "description" : description courte des faits
- "estimated_amount" : montant estimé des dommages en FCFA, nombre entier
- "vehicle_plate" : immatriculation du véhicule si applicable
Utilise une chaîne vide ou null pour une information absente. N'invente rien.`

// ExtractClaim reads a scanned claim document and returns its fields.
// policy_number, incident_date and incident_type are required.
func (a *Assistant) ExtractClaim(ctx context.Context, doc []byte, mimeType string) (*Claim, error) {
	const op = "extract_claim"
	if len(doc) == 0 {
		return nil, domain.NewValidationError("document", "document vide")
	}
	if !SupportedDocument(mimeType) {
		return nil, domain.NewValidationError("document", "type de document non pris en charge: %s", mimeType)
	}

	text, err := a.complete(ctx, op, Prompt{
		System: claimSystem,
		Parts: []Part{
			{MIMEType: strings.ToLower(mimeType), Data: doc},
			{Text: claimInstruction},
		},
		JSON: true,
	})
	if err != nil {
		return nil, err
	}

	var w claimWire
	if err := decodeJSON(text, &w); err != nil {
		return nil, &GatewayError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}

	c := &Claim{
		PolicyNumber: w.PolicyNumber.trim(),
		ClaimantName: w.ClaimantName.trim(),
		IncidentDate: normalizeDate(string(w.IncidentDate)),
		IncidentType: strings.ToLower(w.IncidentType.trim()),
		Location:     w.Location.trim(),
		Description:  w.Description.trim(),
		VehiclePlate: strings.ToUpper(w.VehiclePlate.trim()),
	}
	if amt, ok := parseAmount(w.EstimatedAmount); ok {
		c.EstimatedAmount = &amt
	} else if w.EstimatedAmount != nil {
		a.logger.Debug("unparsed claim amount", zap.Any("value", w.EstimatedAmount))
	}

	if m := missing(map[string]string{
		"policy_number": c.PolicyNumber,
		"incident_date": c.IncidentDate,
		"incident_type": c.IncidentType,
	}); len(m) > 0 {
		return c, &MissingFieldsError{Op: op, Fields: m}
	}
	return c, nil
}

var dateLayouts = []string{"2006-01-02", "02/01/2006", "2/1/2006", "02-01-2006", "02.01.2006"}

// normalizeDate returns s as YYYY-MM-DD, or empty when unreadable
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

func parseAmount(v interface{}) (decimal.Decimal, bool) {
	var s string
	switch x := v.(type) {
	case nil:
		return decimal.Zero, false
	case json.Number:
		s = x.String()
	case float64:
		return decimal.NewFromFloat(x), true
	case string:
		s = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "FCFA", "", "XOF", "", ",", ".").Replace(x)
	default:
		return decimal.Zero, false
	}
	amt, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || amt.IsNegative() {
		return decimal.Zero, false
	}
	return amt.Round(0), true
}
