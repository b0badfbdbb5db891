package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accountbook/internal/events"
	applog "accountbook/internal/log"
)

func TestAuditHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Level: slog.LevelInfo, Format: "json", Component: componentAudit, Output: &buf})

	err := auditHandler(logger)(context.Background(), events.New(events.TransactionDeleted, 42, 7))
	require.NoError(t, err)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ledger change", record["msg"])
	assert.Equal(t, componentAudit, record[applog.FieldComponent])
	assert.Equal(t, "transaction.deleted", record[applog.FieldEvent])
	assert.EqualValues(t, 42, record[applog.FieldTransactionID])
	assert.EqualValues(t, 7, record[applog.FieldUserID])
}
