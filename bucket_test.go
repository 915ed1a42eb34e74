package haven

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/havenstore/haven-go/internal/credential"
	"github.com/havenstore/haven-go/internal/ledger"
)

func TestCreateBucket(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.client.CreateBucket(context.Background(), "team-assets", 1<<30)
	require.NoError(t, err)
	require.Equal(t, "0xcreated1", id)

	tx := env.ledger.lastTx(t)
	require.Equal(t, ledger.FnCreateBucket+ledger.CredentialedSuffix, tx.Calls[0].Function)
	require.Equal(t, "team-assets", tx.Calls[0].Args[0])
}

func TestCreateBucketEmptyName(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.client.CreateBucket(context.Background(), "", 0)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestGetBucket(t *testing.T) {
	env := newTestEnv(t)
	raw, _ := json.Marshal(Bucket{Name: "team-assets", TotalSize: 42})
	env.ledger.objects["0xb1"] = &ledger.Object{ID: "0xb1", Owner: "0xme", Fields: raw}

	b, err := env.client.GetBucket(context.Background(), "0xb1")
	require.NoError(t, err)
	require.Equal(t, "team-assets", b.Name)
	require.Equal(t, int64(42), b.TotalSize)
}

func TestAddCollaboratorRequiresAdmin(t *testing.T) {
	env := newTestEnv(t, withPermissions(credential.PermUpload|credential.PermRead))

	err := env.client.AddCollaborator(context.Background(), "0xb1", "0xcollab", SharePermissions{Read: true})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Zero(t, env.ledger.execCalls)
}

func TestAddAndRemoveCollaborator(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.client.AddCollaborator(context.Background(), "0xb1", "0xcollab", SharePermissions{Read: true, Write: true}))
	tx := env.ledger.lastTx(t)
	require.Equal(t, ledger.FnAddCollaborator+ledger.CredentialedSuffix, tx.Calls[0].Function)

	require.NoError(t, env.client.RemoveCollaborator(context.Background(), "0xb1", "0xcollab"))
	tx = env.ledger.lastTx(t)
	require.Equal(t, ledger.FnRemoveCollaborator+ledger.CredentialedSuffix, tx.Calls[0].Function)
}

func TestAddAssetToBucket(t *testing.T) {
	env := newTestEnv(t)
	env.addAsset(&Asset{ID: "0xa1", BlobID: "blob1", Size: 10})

	require.NoError(t, env.client.AddAssetToBucket(context.Background(), "0xb1", "0xa1"))
	tx := env.ledger.lastTx(t)
	require.Equal(t, ledger.FnAddAssetToBucket+ledger.CredentialedSuffix, tx.Calls[0].Function)
}

func TestAddUnknownAssetToBucket(t *testing.T) {
	env := newTestEnv(t)

	err := env.client.AddAssetToBucket(context.Background(), "0xb1", "0xmissing")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Zero(t, env.ledger.execCalls)
}

func TestListBuckets(t *testing.T) {
	env := newTestEnv(t)
	raw, _ := json.Marshal(Bucket{Name: "a"})
	env.ledger.pages = []*ledger.ObjectsPage{{
		Data: []ledger.Object{{ID: "0xb1", Fields: raw}},
	}}

	buckets, err := env.client.ListBuckets(context.Background())
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	require.Equal(t, "0xb1", buckets[0].ID)
}
