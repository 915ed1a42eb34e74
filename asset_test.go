package haven

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/havenstore/haven-go/internal/ledger"
)

func strPtr(s string) *string { return &s }

func TestRename(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.client.Rename(context.Background(), "0xa1", "new.txt"))

	tx := env.ledger.lastTx(t)
	require.Equal(t, ledger.FnRenameAsset+ledger.CredentialedSuffix, tx.Calls[0].Function)
	require.Equal(t, "0xa1", tx.Calls[0].Args[0])
	require.Equal(t, "new.txt", tx.Calls[0].Args[1])
}

func TestRenameEmptyName(t *testing.T) {
	env := newTestEnv(t)

	err := env.client.Rename(context.Background(), "0xa1", "")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Zero(t, env.ledger.execCalls)
}

func TestCopy(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.client.Copy(context.Background(), "0xa1")
	require.NoError(t, err)
	require.Equal(t, "0xcreated1", id)

	tx := env.ledger.lastTx(t)
	require.Equal(t, ledger.FnCopyAsset+ledger.CredentialedSuffix, tx.Calls[0].Function)
}

func TestUpdateAssetMetadata(t *testing.T) {
	env := newTestEnv(t)

	err := env.client.UpdateAssetMetadata(context.Background(), "0xa1", UpdateOptions{
		Description: strPtr("updated"),
		Tags:        &[]string{"q3", "report"},
	})
	require.NoError(t, err)

	tx := env.ledger.lastTx(t)
	require.Equal(t, ledger.FnUpdateAsset+ledger.CredentialedSuffix, tx.Calls[0].Function)
	patch, ok := tx.Calls[0].Args[1].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "updated", patch["description"])
	require.NotContains(t, patch, "category")
}

func TestUpdateAssetMetadataEmptyPatch(t *testing.T) {
	env := newTestEnv(t)

	err := env.client.UpdateAssetMetadata(context.Background(), "0xa1", UpdateOptions{})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Zero(t, env.ledger.execCalls)
}

func TestMoveToFolder(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.client.MoveToFolder(context.Background(), "0xa1", "0xf1"))

	tx := env.ledger.lastTx(t)
	require.Equal(t, ledger.FnMoveAssetFolder+ledger.CredentialedSuffix, tx.Calls[0].Function)
	require.Equal(t, "0xf1", tx.Calls[0].Args[1])
}

func TestMoveToFolderEmptyClearsFolder(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.client.MoveToFolder(context.Background(), "0xa1", ""))

	tx := env.ledger.lastTx(t)
	require.Equal(t, "", tx.Calls[0].Args[1])
}
