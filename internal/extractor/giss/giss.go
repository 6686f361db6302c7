// Package giss extracts NFSe records from the GISS Online layout
// (tipos-v2_04), where the document root is a namespaced CompNfse.
package giss

import (
	"github.com/MrJamesThe3rd/nfseaudit/internal/extractor/abrasf"
	"github.com/MrJamesThe3rd/nfseaudit/internal/nfse"
	"github.com/MrJamesThe3rd/nfseaudit/internal/xmltree"
)

const (
	Namespace = "http://www.giss.com.br/tipos-v2_04.xsd"
	rootName  = "CompNfse"

	cancellationMarker = "NfseCancelamento"
)

// Matches reports whether root is a GISS document.
func Matches(root *xmltree.Node) bool {
	return root.Is(Namespace, rootName)
}

type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract maps a GISS tree onto a raw record. ok is false when the document
// has no InfNfse, in which case the record is the empty default.
func (e *Extractor) Extract(root *xmltree.Node) (rec nfse.RawRecord, ok bool) {
	rec = nfse.NewRawRecord()

	inf := root.Descendant("InfNfse")
	if inf == nil {
		return rec, false
	}

	decl := root.Descendant("DeclaracaoPrestacaoServico").Find("InfDeclaracaoPrestacaoServico")
	service := decl.Find("Servico")
	values := service.Find("Valores")

	rec.ID = xmltree.Attr(inf, ".", "Id")
	rec.Number = xmltree.Text(inf, "Numero")
	rec.VerificationCode = xmltree.Text(inf, "CodigoVerificacao")
	rec.IssueDate = xmltree.Text(inf, "DataEmissao")
	rec.SpecialRegime = xmltree.Text(decl, "RegimeEspecialTributacao")
	rec.SimplesNacional = xmltree.Text(decl, "OptanteSimplesNacional")
	rec.CulturalIncentive = xmltree.Text(decl, "IncentivoFiscal")

	rec.ServiceDescription = xmltree.Text(service, "Discriminacao")
	rec.ServiceListItem = xmltree.Text(service, "ItemListaServico")
	rec.MunicipalTaxCode = xmltree.Text(service, "CodigoTributacaoMunicipio")
	rec.ServiceMunicipalityCode = xmltree.Text(service, "CodigoMunicipio")

	abrasf.ServiceValues(&rec, values)

	// GISS carries no ValorIssRetido; the withheld amount follows the flag.
	rec.ISSWithheldCode = xmltree.Text(service, "IssRetido")
	if rec.ISSWithheldCode != nil && *rec.ISSWithheldCode == nfse.CodeYes {
		rec.ISSWithheld = rec.ISSValue
	} else {
		rec.ISSWithheld = new("0")
	}

	rec.CalculationBase = xmltree.Text(values, "BaseCalculo")
	if rec.CalculationBase == nil {
		rec.CalculationBase = xmltree.Text(inf, "ValoresNfse/BaseCalculo")
	}

	rec.ISSRate = xmltree.Text(values, "Aliquota")
	if rec.ISSRate == nil {
		rec.ISSRate = xmltree.Text(inf, "ValoresNfse/Aliquota")
	}

	rec.NetValue = xmltree.Text(inf, "ValoresNfse/ValorLiquidoNfse")

	issuer := inf.Find("PrestadorServico")
	rec.Issuer.TaxID = abrasf.TaxID(decl.Find("Prestador/CpfCnpj"))
	rec.Issuer.MunicipalRegistration = xmltree.Text(decl, "Prestador/InscricaoMunicipal")
	rec.Issuer.LegalName = xmltree.Text(issuer, "RazaoSocial")
	rec.Issuer.Address = abrasf.Address(issuer.Find("Endereco"))
	rec.Issuer.Phone, rec.Issuer.Email = abrasf.Contact(issuer.Find("Contato"))

	payer := decl.Find("TomadorServico")
	rec.Payer.TaxID = abrasf.TaxID(payer.Find("IdentificacaoTomador/CpfCnpj"))
	rec.Payer.LegalName = xmltree.Text(payer, "RazaoSocial")
	rec.Payer.Address = abrasf.Address(payer.Find("Endereco"))
	rec.Payer.Phone, rec.Payer.Email = abrasf.Contact(payer.Find("Contato"))

	abrasf.Agency(&rec, inf.Find("OrgaoGerador"))

	if root.Descendant(cancellationMarker) != nil {
		rec.MarkCancelled()
	}

	return rec, true
}
