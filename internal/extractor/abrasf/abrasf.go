// Package abrasf reads the blocks shared by every ABRASF-derived NFSe layout
// (addresses, contacts, CPF/CNPJ choices). Dialect packages compose these
// with their own container paths.
package abrasf

import (
	"github.com/MrJamesThe3rd/nfseaudit/internal/nfse"
	"github.com/MrJamesThe3rd/nfseaudit/internal/xmltree"
)

// TaxID reads a CpfCnpj-style block and returns the CNPJ, or the CPF when
// there is no CNPJ, with punctuation stripped.
func TaxID(n *xmltree.Node) *string {
	return xmltree.CleanTaxID(xmltree.FirstText(n, "Cnpj", "Cpf"))
}

// Address reads an Endereco block. The street itself is a nested Endereco
// element.
func Address(n *xmltree.Node) nfse.RawAddress {
	return nfse.RawAddress{
		Street:           xmltree.Text(n, "Endereco"),
		Number:           xmltree.Text(n, "Numero"),
		Complement:       xmltree.Text(n, "Complemento"),
		District:         xmltree.Text(n, "Bairro"),
		MunicipalityCode: xmltree.Text(n, "CodigoMunicipio"),
		State:            xmltree.Text(n, "Uf"),
		PostalCode:       xmltree.Text(n, "Cep"),
	}
}

// Contact reads a Contato block.
func Contact(n *xmltree.Node) (phone, email *string) {
	return xmltree.Text(n, "Telefone"), xmltree.Text(n, "Email")
}

// Agency reads an OrgaoGerador block.
func Agency(rec *nfse.RawRecord, n *xmltree.Node) {
	rec.AgencyMunicipalityCode = xmltree.Text(n, "CodigoMunicipio")
	rec.AgencyState = xmltree.Text(n, "Uf")
}

// ServiceValues reads the amounts of a Valores block that both layouts
// carry under the same names.
func ServiceValues(rec *nfse.RawRecord, n *xmltree.Node) {
	rec.ServiceValue = xmltree.Text(n, "ValorServicos")
	rec.Deductions = xmltree.Text(n, "ValorDeducoes")
	rec.PIS = xmltree.Text(n, "ValorPis")
	rec.COFINS = xmltree.Text(n, "ValorCofins")
	rec.INSS = xmltree.Text(n, "ValorInss")
	rec.IR = xmltree.Text(n, "ValorIr")
	rec.CSLL = xmltree.Text(n, "ValorCsll")
	rec.ISSValue = xmltree.Text(n, "ValorIss")
	rec.OtherWithholdings = xmltree.Text(n, "OutrasRetencoes")
	rec.UnconditionalDiscount = xmltree.Text(n, "DescontoIncondicionado")
	rec.ConditionalDiscount = xmltree.Text(n, "DescontoCondicionado")
}
