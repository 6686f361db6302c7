package xmltree_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/nfseaudit/internal/xmltree"
)

const sample = `<?xml version="1.0" encoding="UTF-8"?>
<CompNfse xmlns="http://www.giss.com.br/tipos-v2_04.xsd">
  <Nfse versao="2.04">
    <InfNfse Id="nfse-42">
      <Numero>42</Numero>
      <ValoresNfse>
        <BaseCalculo>1000.00</BaseCalculo>
      </ValoresNfse>
      <Vazio></Vazio>
    </InfNfse>
  </Nfse>
  <Outro xmlns="urn:other"><Numero>7</Numero></Outro>
</CompNfse>`

func parse(t *testing.T, doc string) *xmltree.Node {
	t.Helper()

	root, err := xmltree.Parse(strings.NewReader(doc))
	require.NoError(t, err)

	return root
}

func TestParse_RootName(t *testing.T) {
	root := parse(t, sample)

	assert.True(t, root.Is("http://www.giss.com.br/tipos-v2_04.xsd", "CompNfse"))
	assert.False(t, root.Is("", "CompNfse"))
}

func TestParse_Errors(t *testing.T) {
	type testCase struct {
		name string
		doc  string
	}

	tests := []testCase{
		{name: "Empty", doc: ""},
		{name: "Unclosed", doc: "<a><b></b>"},
		{name: "Garbage", doc: "not xml at all <"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := xmltree.Parse(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestText(t *testing.T) {
	root := parse(t, sample)
	inf := root.Find("Nfse/InfNfse")
	require.NotNil(t, inf)

	type testCase struct {
		name string
		node *xmltree.Node
		path string
		want *string
	}

	tests := []testCase{
		{name: "Direct child", node: inf, path: "Numero", want: new("42")},
		{name: "Nested", node: inf, path: "ValoresNfse/BaseCalculo", want: new("1000.00")},
		{name: "Namespaced step", node: root, path: "{http://www.giss.com.br/tipos-v2_04.xsd}Nfse/InfNfse/Numero", want: new("42")},
		{name: "Wrong namespace", node: root, path: "{urn:x}Nfse/InfNfse/Numero", want: nil},
		{name: "Missing path", node: inf, path: "Servico/Valores/ValorIss", want: nil},
		{name: "Empty element", node: inf, path: "Vazio", want: nil},
		{name: "Nil node", node: nil, path: "Numero", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, xmltree.Text(tt.node, tt.path))
		})
	}
}

func TestAttr(t *testing.T) {
	root := parse(t, sample)
	inf := root.Find("Nfse/InfNfse")

	assert.Equal(t, new("nfse-42"), xmltree.Attr(inf, ".", "Id"))
	assert.Equal(t, new("2.04"), xmltree.Attr(root, "Nfse", "versao"))
	assert.Nil(t, xmltree.Attr(inf, ".", "Missing"))
	assert.Nil(t, xmltree.Attr(nil, ".", "Id"))
	assert.Nil(t, xmltree.Attr(root, "Nope", "Id"))
}

func TestDescendant(t *testing.T) {
	root := parse(t, sample)

	assert.Equal(t, "42", root.Descendant("Numero").Text)
	assert.Equal(t, "7", root.Descendant("{urn:other}Numero").Text)
	assert.Nil(t, root.Descendant("ListaNfse"))

	var nilNode *xmltree.Node
	assert.Nil(t, nilNode.Descendant("Numero"))
	assert.Nil(t, nilNode.Find("Numero"))
}

func TestFirstText(t *testing.T) {
	root := parse(t, sample)
	inf := root.Find("Nfse/InfNfse")

	assert.Equal(t, new("1000.00"), xmltree.FirstText(inf, "Servico/Valores/BaseCalculo", "ValoresNfse/BaseCalculo"))
	assert.Nil(t, xmltree.FirstText(inf, "A", "B"))
}

func TestCleanTaxID(t *testing.T) {
	assert.Equal(t, new("12345678000199"), xmltree.CleanTaxID(new("12.345.678/0001-99")))
	assert.Equal(t, new("12345678901"), xmltree.CleanTaxID(new("123.456.789-01")))
	assert.Nil(t, xmltree.CleanTaxID(nil))
	assert.Nil(t, xmltree.CleanTaxID(new("")))
}
