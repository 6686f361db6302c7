package audit_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/nfseaudit/internal/audit"
	"github.com/MrJamesThe3rd/nfseaudit/internal/extractor"
	"github.com/MrJamesThe3rd/nfseaudit/internal/reconcile"
	"github.com/MrJamesThe3rd/nfseaudit/internal/sequence"
)

// ginfes builds a Lucro Presumido invoice to an organization with Standard
// withholdings on a 1000.00 service.
func ginfes(number string) []byte {
	return fmt.Appendf(nil, `<?xml version="1.0" encoding="UTF-8"?>
<ConsultarNfseResposta><ListaNfse><CompNfse><Nfse><InfNfse Id="id-%[1]s">
  <Numero>%[1]s</Numero>
  <DataEmissao>2024-03-15T10:00:00</DataEmissao>
  <OptanteSimplesNacional>2</OptanteSimplesNacional>
  <Servico><Valores>
    <ValorServicos>1000.00</ValorServicos>
    <ValorIr>15.00</ValorIr>
    <ValorCsll>10.00</ValorCsll>
    <ValorPis>6.50</ValorPis>
    <ValorCofins>30.00</ValorCofins>
    <IssRetido>2</IssRetido>
    <ValorIssRetido>0</ValorIssRetido>
    <BaseCalculo>1000.00</BaseCalculo>
  </Valores></Servico>
  <PrestadorServico>
    <IdentificacaoPrestador><Cnpj>11222333000181</Cnpj></IdentificacaoPrestador>
    <RazaoSocial>Clinica Exemplo</RazaoSocial>
  </PrestadorServico>
  <TomadorServico>
    <IdentificacaoTomador><CpfCnpj><Cnpj>44555666000199</Cnpj></CpfCnpj></IdentificacaoTomador>
  </TomadorServico>
</InfNfse></Nfse></CompNfse></ListaNfse></ConsultarNfseResposta>`, number)
}

func TestService_Run(t *testing.T) {
	svc := audit.NewService(2)

	res, err := svc.Run(context.Background(), []audit.Document{
		{Name: "10.xml", Content: ginfes("10")},
		{Name: "11.xml", Content: ginfes("11")},
	}, reconcile.Standard())

	require.NoError(t, err)
	require.Len(t, res.Records, 2)

	for _, r := range res.Records {
		assert.Equal(t, reconcile.OverallOK, r.Overall, r.Record.Number)
	}

	assert.Empty(t, res.Issues)
	assert.Empty(t, res.Warnings())
	require.Len(t, res.Periods, 1)
	assert.Equal(t, "2024-03", res.Periods[0].Period)
}

func TestService_Run_KeepsOrderAndWarns(t *testing.T) {
	svc := audit.NewService(4)

	res, err := svc.Run(context.Background(), []audit.Document{
		{Name: "1.xml", Content: ginfes("1")},
		{Name: "broken.xml", Content: []byte("<ConsultarNfseResposta>")},
		{Name: "other.xml", Content: []byte("<Invoice/>")},
		{Name: "4.xml", Content: ginfes("4")},
	}, reconcile.Standard())

	require.NoError(t, err)
	require.Len(t, res.Files, 4)
	require.Len(t, res.Records, 4)

	assert.Equal(t, "1.xml", res.Files[0].Name)
	assert.Equal(t, extractor.DialectGINFES, res.Files[0].Dialect)
	assert.Equal(t, "4.xml", res.Files[3].Name)
	assert.Equal(t, "4", res.Records[3].Record.Number)

	assert.Error(t, res.Files[1].Warning)
	assert.ErrorIs(t, res.Files[2].Warning, extractor.ErrUnknownLayout)
	assert.Len(t, res.Warnings(), 2)

	// Default records are not applicable to any rule.
	assert.Equal(t, reconcile.OverallNotApplicable, res.Records[1].Overall)

	require.Len(t, res.Issues, 2)
	assert.Equal(t, sequence.IssueMissingNeverIssued, res.Issues[0].Type)
	assert.Equal(t, 2, res.Issues[0].Number)
	assert.Equal(t, 3, res.Issues[1].Number)
}

func TestService_Run_GapLimit(t *testing.T) {
	res, err := audit.NewService(2).WithGapLimit(5).Run(context.Background(), []audit.Document{
		{Name: "1.xml", Content: ginfes("1")},
		{Name: "9000001.xml", Content: ginfes("9000001")},
	}, reconcile.Standard())

	require.NoError(t, err)
	require.Len(t, res.Issues, 6)
	assert.Equal(t, sequence.IssueGapTruncated, res.Issues[5].Type)
	assert.Equal(t, 7, res.Issues[5].Number)
	assert.True(t, sequence.Truncated(res.Issues))
}

func TestService_Run_NothingToProcess(t *testing.T) {
	type testCase struct {
		name string
		docs []audit.Document
	}

	tests := []testCase{
		{name: "empty batch", docs: nil},
		{name: "only unreadable files", docs: []audit.Document{{Name: "a.xml", Content: []byte("not xml")}, {Name: "b.xml", Content: []byte("<rss/>")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := audit.NewService(0).Run(context.Background(), tt.docs, reconcile.Standard())
			assert.ErrorIs(t, err, audit.ErrNothingToProcess)
		})
	}
}

func TestService_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := audit.NewService(1).Run(ctx, []audit.Document{{Name: "1.xml", Content: ginfes("1")}}, reconcile.Standard())

	assert.ErrorIs(t, err, context.Canceled)
}
