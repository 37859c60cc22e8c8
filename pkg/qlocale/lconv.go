// Package qlocale provides the QNX struct lconv built from the host locale
// conventions.
package qlocale

// CharMax marks a char member with no value in the current locale
const CharMax = 127

// HostLconv is the host struct lconv
type HostLconv struct {
	DecimalPoint    string
	ThousandsSep    string
	Grouping        string
	IntCurrSymbol   string
	CurrencySymbol  string
	MonDecimalPoint string
	MonThousandsSep string
	MonGrouping     string
	PositiveSign    string
	NegativeSign    string

	IntFracDigits  int8
	FracDigits     int8
	PCsPrecedes    int8
	PSepBySpace    int8
	NCsPrecedes    int8
	NSepBySpace    int8
	PSignPosn      int8
	NSignPosn      int8
	IntPCsPrecedes int8
	IntPSepBySpace int8
	IntNCsPrecedes int8
	IntNSepBySpace int8
	IntPSignPosn   int8
	IntNSignPosn   int8
}

// Lconv is the QNX struct lconv in header order. The members QNX adds on
// top of C99 are pointers and are always nil.
//
// Lconv is exposed only as a Go value. Every string member of the QNX record
// is a char pointer into process memory, so unlike stat, dirent, timeval and
// sigaction it has no wire image; the field order and the yaml names carry
// the layout.
type Lconv struct {
	// LC_MONETARY
	CurrencySymbol  string `yaml:"currency_symbol"`
	IntCurrSymbol   string `yaml:"int_curr_symbol"`
	MonDecimalPoint string `yaml:"mon_decimal_point"`
	MonGrouping     string `yaml:"mon_grouping"`
	MonThousandsSep string `yaml:"mon_thousands_sep"`
	NegativeSign    string `yaml:"negative_sign"`
	PositiveSign    string `yaml:"positive_sign"`
	FracDigits      int8   `yaml:"frac_digits"`
	IntFracDigits   int8   `yaml:"int_frac_digits"`
	NCsPrecedes     int8   `yaml:"n_cs_precedes"`
	NSepBySpace     int8   `yaml:"n_sep_by_space"`
	NSignPosn       int8   `yaml:"n_sign_posn"`
	PCsPrecedes     int8   `yaml:"p_cs_precedes"`
	PSepBySpace     int8   `yaml:"p_sep_by_space"`
	PSignPosn       int8   `yaml:"p_sign_posn"`
	IntNCsPrecedes  int8   `yaml:"int_n_cs_precedes"`
	IntNSepBySpace  int8   `yaml:"int_n_sep_by_space"`
	IntNSignPosn    int8   `yaml:"int_n_sign_posn"`
	IntPCsPrecedes  int8   `yaml:"int_p_cs_precedes"`
	IntPSepBySpace  int8   `yaml:"int_p_sep_by_space"`
	IntPSignPosn    int8   `yaml:"int_p_sign_posn"`

	// LC_NUMERIC
	DecimalPoint string  `yaml:"decimal_point"`
	Grouping     string  `yaml:"grouping"`
	ThousandsSep string  `yaml:"thousands_sep"`
	FracGrouping *string `yaml:"_Frac_grouping"`
	FracSep      *string `yaml:"_Frac_sep"`
	False        *string `yaml:"_False"`
	True         *string `yaml:"_True"`

	// LC_MESSAGES
	No       *string    `yaml:"_No"`
	Yes      *string    `yaml:"_Yes"`
	Nostr    *string    `yaml:"_Nostr"`
	Yesstr   *string    `yaml:"_Yesstr"`
	Reserved [8]*string `yaml:"_Reserved,flow"`
}

// FromHost copies every member present on both sides
func FromHost(h *HostLconv) Lconv {
	return Lconv{
		CurrencySymbol:  h.CurrencySymbol,
		IntCurrSymbol:   h.IntCurrSymbol,
		MonDecimalPoint: h.MonDecimalPoint,
		MonGrouping:     h.MonGrouping,
		MonThousandsSep: h.MonThousandsSep,
		NegativeSign:    h.NegativeSign,
		PositiveSign:    h.PositiveSign,
		FracDigits:      h.FracDigits,
		IntFracDigits:   h.IntFracDigits,
		NCsPrecedes:     h.NCsPrecedes,
		NSepBySpace:     h.NSepBySpace,
		NSignPosn:       h.NSignPosn,
		PCsPrecedes:     h.PCsPrecedes,
		PSepBySpace:     h.PSepBySpace,
		PSignPosn:       h.PSignPosn,
		IntNCsPrecedes:  h.IntNCsPrecedes,
		IntNSepBySpace:  h.IntNSepBySpace,
		IntNSignPosn:    h.IntNSignPosn,
		IntPCsPrecedes:  h.IntPCsPrecedes,
		IntPSepBySpace:  h.IntPSepBySpace,
		IntPSignPosn:    h.IntPSignPosn,
		DecimalPoint:    h.DecimalPoint,
		Grouping:        h.Grouping,
		ThousandsSep:    h.ThousandsSep,
	}
}
