package money

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amount es un importe en la moneda de la API, con dos decimales.
// La API lo manda como número o como string decimal ("5000.00").
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*a = 0
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*a = 0
			return nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("money: invalid amount %q", s)
	}
	*a = Amount(f)
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(a.Round().Float(), 'f', 2, 64)), nil
}

func (a Amount) Float() float64 { return float64(a) }

// Round redondea a centavos (half away from zero).
func (a Amount) Round() Amount {
	return Amount(math.Round(float64(a)*100) / 100)
}

func (a Amount) Cents() int64 {
	return int64(math.Round(float64(a) * 100))
}

func (a Amount) String() string {
	return strconv.FormatFloat(a.Round().Float(), 'f', 2, 64)
}

// Equal compara a nivel de centavos.
func Equal(a, b Amount) bool {
	return a.Cents() == b.Cents()
}

// Percent devuelve base*rate/100 redondeado a centavos.
func Percent(base Amount, rate float64) Amount {
	return Amount(float64(base) * rate / 100).Round()
}
