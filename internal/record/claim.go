package record

import (
	"encoding/json"
	"fmt"
)

// Claim field names as they appear in raw mappings and serialized records.
const (
	FieldVendorMerchantName = "vendor_merchant_name"
	FieldBillInvoiceAmount  = "bill_invoice_amount"
	FieldRequestedAmount    = "requested_amount"
	FieldDateOfInvoice      = "date_of_invoice"
	FieldClaimStartDate     = "claim_start_date"
	FieldClaimEndDate       = "claim_end_date"
	FieldMediaType          = "media_type"
	FieldActivityType       = "activity_type"
	FieldComments           = "comments"
	FieldDescription        = "description"
	FieldAccountIDNumber    = "account_id_number"
	FieldInvoice            = "invoice"
)

// Policy decides what happens to an activity type its media type does not permit.
type Policy string

const (
	// PolicyCoercive replaces an incompatible activity type with ActivityUnknown.
	PolicyCoercive Policy = "coercive"
	// PolicyStrict rejects the claim, naming both values.
	PolicyStrict Policy = "strict"
)

// DefaultPolicy is used by the zero Validator.
const DefaultPolicy = PolicyCoercive

// ParsePolicy maps a policy name to a Policy. An empty name selects DefaultPolicy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "":
		return DefaultPolicy, nil
	case PolicyCoercive, PolicyStrict:
		return Policy(s), nil
	}
	return "", &FieldError{
		Kind:    KindInvalidEnumValue,
		Field:   "policy",
		Value:   s,
		Message: fmt.Sprintf("must be %q or %q", PolicyCoercive, PolicyStrict),
	}
}

// Validator builds records from raw mappings. The zero value uses DefaultPolicy.
// A Validator holds no mutable state and may be shared across goroutines.
type Validator struct {
	Policy Policy
}

func (v Validator) policy() Policy {
	if v.Policy == "" {
		return DefaultPolicy
	}
	return v.Policy
}

// ClaimRecord is a validated co-op marketing claim. Values are only produced by
// a Validator and are never mutated afterwards.
type ClaimRecord struct {
	VendorMerchantName string
	BillInvoiceAmount  string
	RequestedAmount    string
	DateOfInvoice      Date
	ClaimStartDate     Date
	ClaimEndDate       Date
	MediaType          MediaType
	ActivityType       ActivityType
	Comments           string
	Description        string
	AccountIDNumber    string
	Invoice            string
}

// ClaimFromRaw validates raw with the default policy.
func ClaimFromRaw(raw Raw) (ClaimRecord, error) {
	return Validator{}.Claim(raw)
}

// Claim validates raw and returns the finished record or every violation found.
//
// Stages run in order: required fields, media type, defaults, activity type.
// The activity check sees the final media type.
func (v Validator) Claim(raw Raw) (ClaimRecord, error) {
	c := &collector{}
	var rec ClaimRecord

	rec.VendorMerchantName = requiredText(c, raw, FieldVendorMerchantName)
	rec.BillInvoiceAmount = requiredAmount(c, raw, FieldBillInvoiceAmount)
	rec.DateOfInvoice = requiredDate(c, raw, FieldDateOfInvoice)

	rawMedia, hasMedia := raw.lookup(FieldMediaType)
	if !hasMedia {
		c.add(KindMissingField, FieldMediaType, nil, "is required")
	}
	rec.MediaType = MediaUnknown
	if hasMedia {
		rec.MediaType = ParseMediaType(asEnumName(rawMedia))
	}

	rec.RequestedAmount = optionalAmount(c, raw, FieldRequestedAmount)
	rec.ClaimStartDate = optionalDate(c, raw, FieldClaimStartDate)
	rec.ClaimEndDate = optionalDate(c, raw, FieldClaimEndDate)
	rec.Comments = optionalText(c, raw, FieldComments)
	rec.Description = optionalText(c, raw, FieldDescription)
	rec.AccountIDNumber = optionalText(c, raw, FieldAccountIDNumber)
	rec.Invoice = optionalText(c, raw, FieldInvoice)

	if rec.RequestedAmount == "" {
		rec.RequestedAmount = rec.BillInvoiceAmount
	}
	if rec.ClaimStartDate.IsZero() {
		rec.ClaimStartDate = rec.DateOfInvoice
	}
	if rec.ClaimEndDate.IsZero() {
		rec.ClaimEndDate = rec.DateOfInvoice
	}
	if !rec.ClaimStartDate.IsZero() && !rec.ClaimEndDate.IsZero() && rec.ClaimEndDate.Before(rec.ClaimStartDate) {
		c.add(KindInvalidDateRange, FieldClaimEndDate, rec.ClaimEndDate.String(),
			"must not be before %s %s", FieldClaimStartDate, rec.ClaimStartDate)
	}

	rec.ActivityType = ActivityUnknown
	if rawActivity, ok := raw.lookup(FieldActivityType); ok {
		rec.ActivityType = ParseActivityType(asEnumName(rawActivity))
	}
	if !Compatible(rec.MediaType, rec.ActivityType) {
		switch v.policy() {
		case PolicyStrict:
			c.add(KindIncompatibleActivity, FieldActivityType, string(rec.ActivityType),
				"activity type %q is not allowed for media type %q", rec.ActivityType, rec.MediaType)
		default:
			rec.ActivityType = ActivityUnknown
		}
	}

	if err := c.err(); err != nil {
		return ClaimRecord{}, err
	}
	return rec, nil
}

func requiredAmount(c *collector, r Raw, field string) string {
	v, ok := r.lookup(field)
	if !ok {
		c.add(KindMissingField, field, nil, "is required")
		return ""
	}
	s, ok := asAmount(v)
	if !ok {
		c.add(KindInvalidType, field, v, "must be text or a number")
		return ""
	}
	if s == "" {
		c.add(KindEmptyRequiredText, field, nil, "must not be blank")
	}
	return s
}

func optionalAmount(c *collector, r Raw, field string) string {
	v, ok := r.lookup(field)
	if !ok {
		return ""
	}
	s, ok := asAmount(v)
	if !ok {
		c.add(KindInvalidType, field, v, "must be text or a number")
		return ""
	}
	return s
}

func requiredDate(c *collector, r Raw, field string) Date {
	v, ok := r.lookup(field)
	if !ok {
		c.add(KindMissingField, field, nil, "is required")
		return Date{}
	}
	d, ok, err := asDate(v)
	switch {
	case !ok:
		c.add(KindInvalidType, field, v, "must be a date")
	case err != nil:
		c.add(KindInvalidDate, field, v, "must be a date in %s form", DateLayout)
	case d.IsZero():
		c.add(KindEmptyRequiredText, field, nil, "must not be blank")
	}
	return d
}

func optionalDate(c *collector, r Raw, field string) Date {
	v, ok := r.lookup(field)
	if !ok {
		return Date{}
	}
	d, ok, err := asDate(v)
	switch {
	case !ok:
		c.add(KindInvalidType, field, v, "must be a date")
	case err != nil:
		c.add(KindInvalidDate, field, v, "must be a date in %s form", DateLayout)
	}
	return d
}

// Raw returns the serialized field mapping of c. Feeding it back through a
// Validator yields an identical record.
func (c ClaimRecord) Raw() Raw {
	return Raw{
		FieldVendorMerchantName: c.VendorMerchantName,
		FieldBillInvoiceAmount:  c.BillInvoiceAmount,
		FieldRequestedAmount:    c.RequestedAmount,
		FieldDateOfInvoice:      c.DateOfInvoice.String(),
		FieldClaimStartDate:     c.ClaimStartDate.String(),
		FieldClaimEndDate:       c.ClaimEndDate.String(),
		FieldMediaType:          string(c.MediaType),
		FieldActivityType:       string(c.ActivityType),
		FieldComments:           c.Comments,
		FieldDescription:        c.Description,
		FieldAccountIDNumber:    c.AccountIDNumber,
		FieldInvoice:            c.Invoice,
	}
}

type claimJSON struct {
	VendorMerchantName string       `json:"vendor_merchant_name"`
	BillInvoiceAmount  string       `json:"bill_invoice_amount"`
	RequestedAmount    string       `json:"requested_amount"`
	DateOfInvoice      Date         `json:"date_of_invoice"`
	ClaimStartDate     Date         `json:"claim_start_date"`
	ClaimEndDate       Date         `json:"claim_end_date"`
	MediaType          MediaType    `json:"media_type"`
	ActivityType       ActivityType `json:"activity_type"`
	Comments           string       `json:"comments"`
	Description        string       `json:"description"`
	AccountIDNumber    string       `json:"account_id_number"`
	Invoice            string       `json:"invoice"`
}

func (c ClaimRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(claimJSON(c))
}

// UnmarshalJSON rebuilds a record through the strict validator, so only data
// that already forms a valid record decodes.
func (c *ClaimRecord) UnmarshalJSON(b []byte) error {
	var raw Raw
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decoding claim: %w", err)
	}
	rec, err := Validator{Policy: PolicyStrict}.Claim(raw)
	if err != nil {
		return err
	}
	*c = rec
	return nil
}
