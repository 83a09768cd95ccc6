// Package gestmag describes the legacy Gestmag data model: the closed set of
// record kinds exported per retail site and the archive files that hold them.
package gestmag

// Kind identifies one legacy entity kind. Each site exports at most one
// archive file per kind.
type Kind string

const (
	KindArticle     Kind = "article"
	KindClassNumber Kind = "class-number"
	KindSupplier    Kind = "supplier"
	KindCustomer    Kind = "customer"
	KindInvoice     Kind = "invoice"
	KindInvoiceLine Kind = "invoice-line"
	KindThirdParty  Kind = "third-party"
)

// archiveFiles maps each kind to its conventional archive filename inside a
// site directory. The names come from the Gestmag export, not from us.
var archiveFiles = map[Kind]string{
	KindArticle:     "article.dbf",
	KindClassNumber: "classnum.dbf",
	KindSupplier:    "fourniss.dbf",
	KindCustomer:    "client.dbf",
	KindInvoice:     "facture.dbf",
	KindInvoiceLine: "detail.dbf",
	KindThirdParty:  "tiers.dbf",
}

// Kinds returns every kind in the fixed processing order. Runs iterate this
// order so that timing and progress output is comparable across executions.
func Kinds() []Kind {
	return []Kind{
		KindArticle,
		KindClassNumber,
		KindSupplier,
		KindCustomer,
		KindInvoice,
		KindInvoiceLine,
		KindThirdParty,
	}
}

// ArchiveFile returns the conventional archive filename for a kind.
func (k Kind) ArchiveFile() string {
	return archiveFiles[k]
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	_, ok := archiveFiles[k]
	return ok
}

func (k Kind) String() string { return string(k) }
