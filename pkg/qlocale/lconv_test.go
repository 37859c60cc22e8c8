package qlocale

import (
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

type countingSource struct {
	calls int32
	h     HostLconv
}

func (s *countingSource) Conventions() HostLconv {
	atomic.AddInt32(&s.calls, 1)
	return s.h
}

func TestFromHost(t *testing.T) {
	h := HostLconv{
		DecimalPoint:    ",",
		ThousandsSep:    ".",
		Grouping:        "\x03",
		IntCurrSymbol:   "EUR ",
		CurrencySymbol:  "€",
		MonDecimalPoint: ",",
		MonThousandsSep: ".",
		MonGrouping:     "\x03\x03",
		PositiveSign:    "+",
		NegativeSign:    "-",
		IntFracDigits:   2,
		FracDigits:      2,
		PCsPrecedes:     0,
		PSepBySpace:     1,
		NCsPrecedes:     0,
		NSepBySpace:     1,
		PSignPosn:       1,
		NSignPosn:       1,
		IntPCsPrecedes:  1,
		IntPSepBySpace:  2,
		IntNCsPrecedes:  1,
		IntNSepBySpace:  2,
		IntPSignPosn:    3,
		IntNSignPosn:    4,
	}
	lc := FromHost(&h)
	assert.Equal(t, Lconv{
		CurrencySymbol:  "€",
		IntCurrSymbol:   "EUR ",
		MonDecimalPoint: ",",
		MonGrouping:     "\x03\x03",
		MonThousandsSep: ".",
		NegativeSign:    "-",
		PositiveSign:    "+",
		FracDigits:      2,
		IntFracDigits:   2,
		NCsPrecedes:     0,
		NSepBySpace:     1,
		NSignPosn:       1,
		PCsPrecedes:     0,
		PSepBySpace:     1,
		PSignPosn:       1,
		IntNCsPrecedes:  1,
		IntNSepBySpace:  2,
		IntNSignPosn:    4,
		IntPCsPrecedes:  1,
		IntPSepBySpace:  2,
		IntPSignPosn:    3,
		DecimalPoint:    ",",
		Grouping:        "\x03",
		ThousandsSep:    ".",
	}, lc)

	assert.Nil(t, lc.FracGrouping)
	assert.Nil(t, lc.Yesstr)
	for _, r := range lc.Reserved {
		assert.Nil(t, r)
	}
}

func TestCSource(t *testing.T) {
	h := CSource{}.Conventions()
	lc := FromHost(&h)
	assert.Equal(t, ".", lc.DecimalPoint)
	assert.Empty(t, lc.ThousandsSep)
	assert.Empty(t, lc.CurrencySymbol)
	assert.Equal(t, int8(CharMax), lc.FracDigits)
	assert.Equal(t, int8(CharMax), lc.IntNSignPosn)
}

func TestConverter_Once(t *testing.T) {
	src := &countingSource{h: HostLconv{DecimalPoint: "."}}
	c := NewConverter(src)

	var wg sync.WaitGroup
	ptrs := make([]*Lconv, 16)
	for i := range ptrs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ptrs[i] = c.Localeconv()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&src.calls))
	for _, p := range ptrs {
		assert.Same(t, ptrs[0], p)
	}

	// later host changes are not observed
	src.h.DecimalPoint = ","
	assert.Equal(t, ".", c.Localeconv().DecimalPoint)
	assert.Equal(t, int32(1), atomic.LoadInt32(&src.calls))
}

func TestEnvSource(t *testing.T) {
	env := map[string]string{}
	logger, hook := test.NewNullLogger()
	src := EnvSource{Logger: logger, Getenv: func(k string) string { return env[k] }}

	assert.Equal(t, "C", src.Requested())
	src.Conventions()
	assert.Empty(t, hook.AllEntries())

	env["LANG"] = "de_DE.UTF-8"
	assert.Equal(t, "de_DE.UTF-8", src.Requested())
	env["LC_NUMERIC"] = "fr_FR"
	assert.Equal(t, "fr_FR", src.Requested())
	env["LC_ALL"] = "POSIX"
	assert.Equal(t, "POSIX", src.Requested())

	env["LC_ALL"] = "ja_JP"
	h := src.Conventions()
	assert.Equal(t, CSource{}.Conventions(), h)
	if assert.NotNil(t, hook.LastEntry()) {
		assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
		assert.Equal(t, "ja_JP", hook.LastEntry().Data["locale"])
	}
}

func TestLocaleconv(t *testing.T) {
	assert.Same(t, Localeconv(), Localeconv())
	assert.Equal(t, ".", Localeconv().DecimalPoint)
}

func TestLconvFieldOrder(t *testing.T) {
	want := []string{
		"currency_symbol", "int_curr_symbol", "mon_decimal_point", "mon_grouping",
		"mon_thousands_sep", "negative_sign", "positive_sign",
		"frac_digits", "int_frac_digits", "n_cs_precedes", "n_sep_by_space",
		"n_sign_posn", "p_cs_precedes", "p_sep_by_space", "p_sign_posn",
		"int_n_cs_precedes", "int_n_sep_by_space", "int_n_sign_posn",
		"int_p_cs_precedes", "int_p_sep_by_space", "int_p_sign_posn",
		"decimal_point", "grouping", "thousands_sep",
		"_Frac_grouping", "_Frac_sep", "_False", "_True",
		"_No", "_Yes", "_Nostr", "_Yesstr", "_Reserved",
	}
	typ := reflect.TypeOf(Lconv{})
	var got []string
	for i := 0; i < typ.NumField(); i++ {
		tag, _, _ := strings.Cut(typ.Field(i).Tag.Get("yaml"), ",")
		got = append(got, tag)
	}
	assert.Equal(t, want, got)
}
