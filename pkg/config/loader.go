package config

import (
	"fmt"
	"reflect"

	"github.com/caarlos0/env/v10"
	"github.com/shopspring/decimal"
)

// parsers teaches env how to decode the non-primitive field types used by
// the storefront config (money amounts and rates).
var parsers = map[reflect.Type]env.ParserFunc{
	reflect.TypeOf(decimal.Decimal{}): func(v string) (any, error) {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("invalid decimal %q: %w", v, err)
		}
		return d, nil
	},
}

// Load parses environment variables into the provided struct.
// The struct should use `env` tags to define mappings.
//
// Example:
//
//	type Config struct {
//	    Port      int             `env:"HTTP_PORT" envDefault:"8080"`
//	    PromoRate decimal.Decimal `env:"PROMO_RATE" envDefault:"0.10"`
//	}
func Load(cfg any) error {
	return LoadWithPrefix(cfg, "")
}

// LoadWithPrefix behaves like Load but prepends prefix to every variable name.
func LoadWithPrefix(cfg any, prefix string) error {
	opts := env.Options{
		Prefix:  prefix,
		FuncMap: parsers,
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
