// Package ginfes extracts NFSe records from GINFES response envelopes, where
// the invoice sits under ListaNfse/CompNfse/Nfse/InfNfse.
package ginfes

import (
	"slices"

	"github.com/MrJamesThe3rd/nfseaudit/internal/extractor/abrasf"
	"github.com/MrJamesThe3rd/nfseaudit/internal/nfse"
	"github.com/MrJamesThe3rd/nfseaudit/internal/xmltree"
)

const (
	listName           = "ListaNfse"
	cancellationMarker = "CancelamentoNfse"
)

// envelopes are the root elements GINFES web services answer with.
var envelopes = []string{
	"ConsultarNfseResposta",
	"GerarNfseResposta",
	"PedidoCancelamentoNFSeEnvio",
	"ConsultarLoteRpsResposta",
	"ConsultarNfseRpsResposta",
}

// Matches reports whether root is a GINFES envelope or holds a ListaNfse.
func Matches(root *xmltree.Node) bool {
	if root == nil {
		return false
	}

	return slices.Contains(envelopes, root.Name.Local) || root.Descendant(listName) != nil
}

type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract maps the first invoice of a GINFES ListaNfse onto a raw record. ok
// is false when ListaNfse/CompNfse/Nfse/InfNfse is absent.
func (e *Extractor) Extract(root *xmltree.Node) (rec nfse.RawRecord, ok bool) {
	rec = nfse.NewRawRecord()

	inf := root.Descendant(listName).Find("CompNfse/Nfse/InfNfse")
	if inf == nil {
		return rec, false
	}

	rec.ID = xmltree.Attr(inf, ".", "Id")
	rec.Number = xmltree.Text(inf, "Numero")
	rec.VerificationCode = xmltree.Text(inf, "CodigoVerificacao")
	rec.IssueDate = xmltree.Text(inf, "DataEmissao")
	rec.OperationNature = xmltree.Text(inf, "NaturezaOperacao")
	rec.SpecialRegime = xmltree.Text(inf, "RegimeEspecialTributacao")
	rec.SimplesNacional = xmltree.Text(inf, "OptanteSimplesNacional")
	rec.CulturalIncentive = xmltree.Text(inf, "IncentivadorCultural")

	service := inf.Find("Servico")
	values := service.Find("Valores")

	rec.ServiceDescription = xmltree.Text(service, "Discriminacao")
	rec.ServiceListItem = xmltree.Text(service, "ItemListaServico")
	rec.MunicipalTaxCode = xmltree.Text(service, "CodigoTributacaoMunicipio")
	rec.ServiceMunicipalityCode = xmltree.Text(service, "CodigoMunicipio")

	abrasf.ServiceValues(&rec, values)
	rec.ISSWithheldCode = xmltree.Text(values, "IssRetido")
	rec.ISSWithheld = xmltree.Text(values, "ValorIssRetido")
	rec.CalculationBase = xmltree.Text(values, "BaseCalculo")
	rec.ISSRate = xmltree.Text(values, "Aliquota")
	rec.NetValue = xmltree.Text(values, "ValorLiquidoNfse")

	issuer := inf.Find("PrestadorServico")
	rec.Issuer.TaxID = abrasf.TaxID(issuer.Find("IdentificacaoPrestador"))
	rec.Issuer.MunicipalRegistration = xmltree.Text(issuer, "IdentificacaoPrestador/InscricaoMunicipal")
	rec.Issuer.LegalName = xmltree.Text(issuer, "RazaoSocial")
	rec.Issuer.Address = abrasf.Address(issuer.Find("Endereco"))
	rec.Issuer.Phone, rec.Issuer.Email = abrasf.Contact(issuer.Find("Contato"))

	payer := inf.Find("TomadorServico")
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
