package bookings

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"petcare-client/internal/domain/services"
	"petcare-client/internal/platform/httpclient"
	"petcare-client/internal/platform/money"
)

// QuoteInput son los datos del formulario que determinan el precio.
type QuoteInput struct {
	Service services.Service
	Pets    []int64
	Start   Date
	End     Date
}

// Validate corre antes de cualquier request.
func (in QuoteInput) Validate() error {
	if in.Service.ID <= 0 {
		return httpclient.Invalid("service", "required")
	}
	if len(in.Pets) == 0 {
		return httpclient.Invalid("pets", "select at least one pet")
	}
	if in.Service.Type.PerNight() {
		if in.Start.IsZero() || in.End.IsZero() {
			return httpclient.Invalid("end_date", "select check-in and check-out dates")
		}
		if !in.End.After(in.Start.Time) {
			return httpclient.Invalid("end_date", "end date must be after start date")
		}
	}
	return nil
}

// Units = max(1, mascotas) × noches (solo categorías por noche).
func (in QuoteInput) Units() int {
	n := max(1, len(petSet(in.Pets)))
	if in.Service.Type.PerNight() {
		n *= max(1, in.Start.NightsUntil(in.End))
	}
	return n
}

// petSet ordena y saca repetidos: las mascotas son un conjunto.
func petSet(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

// QuoteKey identifica las entradas que produjeron un precio.
type QuoteKey string

func (in QuoteInput) Key() QuoteKey {
	pets := petSet(in.Pets)
	ids := make([]string, len(pets))
	for i, id := range pets {
		ids[i] = strconv.FormatInt(id, 10)
	}

	end := ""
	if in.Service.Type.PerNight() {
		end = in.End.String()
	}
	return QuoteKey(fmt.Sprintf("s=%d|p=%s|from=%s|to=%s",
		in.Service.ID, strings.Join(ids, ","), in.Start.String(), end))
}

// Quote es un precio no vinculante del servidor, sellado con su QuoteKey.
type Quote struct {
	Key            QuoteKey
	Quantity       int
	BasePrice      money.Amount
	RatePercentage float64
	PlatformFee    money.Amount
	Total          money.Amount
}

type quoteRequest struct {
	ServiceID int64 `json:"service_id"`
	Quantity  int   `json:"quantity"`
}

type quoteResponse struct {
	BasePrice          money.Amount  `json:"base_price"`
	RatePercentage     money.Amount  `json:"rate_percentage"`
	PlatformFee        *money.Amount `json:"platform_fee"`
	ClientTotalPayment money.Amount  `json:"client_total_payment"`
}

// toQuote arma el Quote y verifica total == base + fee (tolerancia 1 centavo).
func (r quoteResponse) toQuote(key QuoteKey, qty int) (Quote, error) {
	rate := r.RatePercentage.Float()
	fee := money.Percent(r.BasePrice, rate)
	if r.PlatformFee != nil {
		fee = r.PlatformFee.Round()
	}

	q := Quote{
		Key:            key,
		Quantity:       qty,
		BasePrice:      r.BasePrice.Round(),
		RatePercentage: rate,
		PlatformFee:    fee,
		Total:          r.ClientTotalPayment.Round(),
	}

	diff := q.Total.Cents() - (q.BasePrice.Cents() + q.PlatformFee.Cents())
	if diff > 1 || diff < -1 {
		return Quote{}, fmt.Errorf("%w: base=%s fee=%s total=%s",
			ErrInconsistentQuote, q.BasePrice, q.PlatformFee, q.Total)
	}
	return q, nil
}
