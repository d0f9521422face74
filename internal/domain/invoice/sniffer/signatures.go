package sniffer

// Template names double as the extraction method label of their parsers.
const (
	TemplateNavatec = "NAVATEC"
	TemplateTribuCR = "TRIBU_CR"
	TemplateSiigo   = "SIIGO"
	TemplateAlegra  = "ALEGRA"
)

// Country codes.
const (
	CountryCostaRica = "CR"
	CountryColombia  = "CO"
)

// DefaultSignatures returns the built-in templates in priority order.
//
// Each template pairs an issuer or software signature with the document
// heading and a regulatory marker of its country, which keeps the sets
// disjoint: NAVATEC never prints the Tribu-CR footer, and Siigo and Alegra
// print only their own software credit.
func DefaultSignatures() []TemplateSignature {
	return []TemplateSignature{
		{
			Name:    TemplateNavatec,
			Country: CountryCostaRica,
			Groups: [][]string{
				{"NAVATEC INGENIERIA", "NAVATECO"},
				{"FACTURA ELECTRONICA N"},
				{"SUBTOTAL NETO", "TOTAL FACTURA"},
			},
		},
		{
			Name:    TemplateTribuCR,
			Country: CountryCostaRica,
			Groups: [][]string{
				{"TRIBU-CR", "TRIBU CR", "TRIBUCR"},
				{"CLAVE NUMERICA"},
				{"MINISTERIO DE HACIENDA", "HACIENDA.GO.CR"},
			},
		},
		{
			Name:    TemplateSiigo,
			Country: CountryColombia,
			Groups: [][]string{
				{"SIIGO"},
				{"FACTURA ELECTRONICA DE VENTA"},
				{"CUFE"},
			},
		},
		{
			Name:    TemplateAlegra,
			Country: CountryColombia,
			Groups: [][]string{
				{"ALEGRA"},
				{"FACTURA ELECTRONICA DE VENTA"},
				{"CUFE"},
				{"RESOLUCION DIAN", "AUTORIZACION DE NUMERACION", "NUMERACION DE FACTURACION"},
			},
		},
	}
}

// NewDefaultClassifier builds a classifier over DefaultSignatures.
func NewDefaultClassifier() *Classifier {
	c, err := NewClassifier(DefaultSignatures())
	if err != nil {
		// built-in signatures are static
		panic(err)
	}
	return c
}
