package qlocale

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Source provides the host locale conventions
type Source interface {
	Conventions() HostLconv
}

// CSource reports the conventions of the POSIX "C" locale
type CSource struct{}

// Conventions implements Source
func (CSource) Conventions() HostLconv {
	return HostLconv{
		DecimalPoint:   ".",
		IntFracDigits:  CharMax,
		FracDigits:     CharMax,
		PCsPrecedes:    CharMax,
		PSepBySpace:    CharMax,
		NCsPrecedes:    CharMax,
		NSepBySpace:    CharMax,
		PSignPosn:      CharMax,
		NSignPosn:      CharMax,
		IntPCsPrecedes: CharMax,
		IntPSepBySpace: CharMax,
		IntNCsPrecedes: CharMax,
		IntNSepBySpace: CharMax,
		IntPSignPosn:   CharMax,
		IntNSignPosn:   CharMax,
	}
}

// EnvSource resolves the locale named by the environment. There are no
// locale tables to load, so every name yields the C conventions; the
// request is logged when it names something else.
type EnvSource struct {
	Logger logrus.FieldLogger
	// Getenv defaults to os.Getenv
	Getenv func(string) string
}

// Requested returns the effective LC_NUMERIC locale name: LC_ALL, then
// LC_NUMERIC, then LANG, then "C"
func (s EnvSource) Requested() string {
	getenv := s.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	for _, k := range []string{"LC_ALL", "LC_NUMERIC", "LANG"} {
		if v := getenv(k); v != "" {
			return v
		}
	}
	return "C"
}

// Conventions implements Source
func (s EnvSource) Conventions() HostLconv {
	name := s.Requested()
	if name != "C" && name != "POSIX" && s.Logger != nil {
		s.Logger.WithField("locale", name).Warn("locale not available, using C")
	}
	return CSource{}.Conventions()
}

// Converter holds the process-wide foreign record. It is computed from its
// Source on first use and never refreshed.
type Converter struct {
	src  Source
	once sync.Once
	lc   Lconv
}

// NewConverter creates a Converter over src
func NewConverter(src Source) *Converter {
	return &Converter{src: src}
}

// Localeconv returns the record, every call returns the same pointer
func (c *Converter) Localeconv() *Lconv {
	c.once.Do(func() {
		h := c.src.Conventions()
		c.lc = FromHost(&h)
	})
	return &c.lc
}

var std = NewConverter(EnvSource{Logger: logrus.StandardLogger()})

// Localeconv returns the process-wide QNX lconv
func Localeconv() *Lconv {
	return std.Localeconv()
}
