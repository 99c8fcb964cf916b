package lsp

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/bastok/blines"
	"github.com/dhamidi/bastok/charset"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cs, err := charset.Lookup("cp437")
	require.NoError(t, err)
	return NewServer("test", cs, blines.DefaultCommentChar)
}

type notification struct {
	method string
	params protocol.PublishDiagnosticsParams
}

func recorder(got *[]notification) *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {
			*got = append(*got, notification{method, params.(protocol.PublishDiagnosticsParams)})
		},
	}
}

func TestDiagnose(t *testing.T) {
	ls := newTestServer(t)

	text := "‖ demo\r\n10 PRINT \"€\"\r\n20 GOTO\r\n   X\r\n30 END\r\n"
	diags := ls.Diagnose(text)
	require.Len(t, diags, 2)

	require.Equal(t, protocol.UInteger(1), diags[0].Range.Start.Line)
	require.Equal(t, protocol.UInteger(12), diags[0].Range.End.Character)
	require.Contains(t, diags[0].Message, "cannot encode character")
	require.Equal(t, protocol.DiagnosticSeverityError, *diags[0].Severity)
	require.Equal(t, "bastok", *diags[0].Source)

	require.Equal(t, protocol.UInteger(2), diags[1].Range.Start.Line)
	require.Contains(t, diags[1].Message, "expected line number after GOTO")
}

func TestDiagnoseClean(t *testing.T) {
	ls := newTestServer(t)
	diags := ls.Diagnose("10 PRINT 1\n20 GOTO 10\n")
	require.NotNil(t, diags)
	require.Empty(t, diags)
}

func TestDocumentLifecycle(t *testing.T) {
	ls := newTestServer(t)
	var got []notification
	ctx := recorder(&got)
	uri := protocol.DocumentUri("file:///prog.bas")

	require.NoError(t, ls.textDocumentDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, Text: "10 GOTO\n"},
	}))
	require.Len(t, got, 1)
	require.Equal(t, protocol.ServerTextDocumentPublishDiagnostics, got[0].method)
	require.Equal(t, uri, got[0].params.URI)
	require.Len(t, got[0].params.Diagnostics, 1)

	require.NoError(t, ls.textDocumentDidChange(ctx, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: "10 GOTO 10\n"}},
	}))
	require.Len(t, got, 2)
	require.Empty(t, got[1].params.Diagnostics)

	require.NoError(t, ls.textDocumentDidSave(ctx, &protocol.DidSaveTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}))
	require.Len(t, got, 3)
	require.Empty(t, got[2].params.Diagnostics)

	require.NoError(t, ls.textDocumentDidClose(ctx, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}))
	require.Len(t, got, 4)
	require.Empty(t, got[3].params.Diagnostics)

	ls.mu.Lock()
	require.Empty(t, ls.docs)
	ls.mu.Unlock()
}

func TestInitialize(t *testing.T) {
	ls := newTestServer(t)
	res, err := ls.initialize(&glsp.Context{}, &protocol.InitializeParams{})
	require.NoError(t, err)

	result := res.(protocol.InitializeResult)
	require.Equal(t, "bastok", result.ServerInfo.Name)
	require.Equal(t, "test", *result.ServerInfo.Version)
	sync := result.Capabilities.TextDocumentSync.(*protocol.TextDocumentSyncOptions)
	require.True(t, *sync.OpenClose)
}
