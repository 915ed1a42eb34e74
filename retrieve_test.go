package haven

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/havenstore/haven-go/internal/ledger"
)

func boolPtr(b bool) *bool { return &b }

func TestRetrievePlain(t *testing.T) {
	env := newTestEnv(t)
	env.addAsset(&Asset{ID: "0xa1", Owner: env.client.Address(), BlobID: "blob1", Name: "a.txt", Size: 4})
	env.blobs.data["blob1"] = []byte("data")

	res, err := env.client.Retrieve(context.Background(), "0xa1", nil)
	require.NoError(t, err)
	require.Equal(t, []byte("data"), res.Data)
	require.False(t, res.Decrypted)
	require.Equal(t, "0xa1", res.Asset.ID)
	require.Zero(t, env.seal.decrypts)
}

func TestRetrieveDecryptsByDefault(t *testing.T) {
	env := newTestEnv(t)
	env.addAsset(&Asset{ID: "0xa1", BlobID: "blob1", PolicyID: "0xpol", Encrypted: true})
	env.blobs.data["blob1"] = append([]byte(sealMarker), []byte("plain")...)

	res, err := env.client.Retrieve(context.Background(), "0xa1", &RetrieveOptions{Session: "sess-token"})
	require.NoError(t, err)
	require.True(t, res.Decrypted)
	require.Equal(t, []byte("plain"), res.Data)
	require.Equal(t, 1, env.seal.decrypts)
	require.Equal(t, "0xpol", env.seal.lastPolicy)
}

func TestRetrieveEncryptedRequiresSession(t *testing.T) {
	env := newTestEnv(t)
	env.addAsset(&Asset{ID: "0xa1", BlobID: "blob1", PolicyID: "0xpol", Encrypted: true})
	env.blobs.data["blob1"] = []byte("ciphertext")

	_, err := env.client.Retrieve(context.Background(), "0xa1", nil)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Zero(t, env.seal.decrypts)
}

func TestRetrieveCiphertextOptOut(t *testing.T) {
	env := newTestEnv(t)
	env.addAsset(&Asset{ID: "0xa1", BlobID: "blob1", PolicyID: "0xpol", Encrypted: true})
	env.blobs.data["blob1"] = []byte("ciphertext")

	res, err := env.client.Retrieve(context.Background(), "0xa1", &RetrieveOptions{Decrypt: boolPtr(false)})
	require.NoError(t, err)
	require.False(t, res.Decrypted)
	require.Equal(t, []byte("ciphertext"), res.Data)
}

func TestRetrieveRoutesObjectIDBlobs(t *testing.T) {
	env := newTestEnv(t)
	env.addAsset(&Asset{ID: "0xa1", BlobID: "0xblobobj"})
	env.blobs.data["0xblobobj"] = []byte("data")

	_, err := env.client.Retrieve(context.Background(), "0xa1", nil)
	require.NoError(t, err)
	require.Equal(t, 1, env.blobs.byObjID)
}

func TestGetAssetNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.client.GetAsset(context.Background(), "0xmissing")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestGetAssetCachedWithinTTL(t *testing.T) {
	env := newTestEnv(t)
	env.addAsset(&Asset{ID: "0xa1", BlobID: "blob1", Name: "a.txt"})

	for i := 0; i < 3; i++ {
		a, err := env.client.GetAsset(context.Background(), "0xa1")
		require.NoError(t, err)
		require.Equal(t, "a.txt", a.Name)
	}
	require.Equal(t, 1, env.ledger.getCalls)
}

func TestMutationInvalidatesCache(t *testing.T) {
	env := newTestEnv(t)
	env.addAsset(&Asset{ID: "0xa1", BlobID: "blob1", Name: "a.txt"})

	_, err := env.client.GetAsset(context.Background(), "0xa1")
	require.NoError(t, err)
	require.Equal(t, 1, env.ledger.getCalls)

	require.NoError(t, env.client.Rename(context.Background(), "0xa1", "b.txt"))

	_, err = env.client.GetAsset(context.Background(), "0xa1")
	require.NoError(t, err)
	require.Equal(t, 2, env.ledger.getCalls)
}

func TestListAssetsPopulatesCacheAndFilters(t *testing.T) {
	env := newTestEnv(t)
	rawA, _ := assetJSON(&Asset{BlobID: "blob1", Name: "a", FolderID: "0xf1"})
	rawB, _ := assetJSON(&Asset{BlobID: "blob2", Name: "b"})
	env.ledger.pages = []*ledger.ObjectsPage{{
		Data: []ledger.Object{
			{ID: "0xa1", Owner: "0xme", Fields: rawA},
			{ID: "0xa2", Owner: "0xme", Fields: rawB},
		},
	}}

	page, err := env.client.ListAssets(context.Background(), &ListOptions{FolderID: "0xf1"})
	require.NoError(t, err)
	require.Len(t, page.Assets, 1)
	require.Equal(t, "0xa1", page.Assets[0].ID)

	// listed records are served from the cache afterwards
	_, err = env.client.GetAsset(context.Background(), "0xa1")
	require.NoError(t, err)
	require.Zero(t, env.ledger.getCalls)
}

func TestGetStorageInfoPagesThrough(t *testing.T) {
	env := newTestEnv(t)
	raw1, _ := assetJSON(&Asset{Size: 100})
	raw2, _ := assetJSON(&Asset{Size: 250})
	env.ledger.pages = []*ledger.ObjectsPage{
		{Data: []ledger.Object{{ID: "0xa1", Fields: raw1}}, HasNextPage: true, NextCursor: "c1"},
		{Data: []ledger.Object{{ID: "0xa2", Fields: raw2}}},
	}

	info, err := env.client.GetStorageInfo(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, info.AssetCount)
	require.Equal(t, int64(350), info.TotalSize)
	require.Equal(t, 2, env.ledger.ownedCalls)
}

func TestFindInconsistentAssets(t *testing.T) {
	env := newTestEnv(t)
	rawOK, _ := assetJSON(&Asset{PolicyID: "0xpol", Encrypted: true})
	rawBad, _ := assetJSON(&Asset{PolicyID: "0xpol", Encrypted: false})
	rawPlain, _ := assetJSON(&Asset{})
	env.ledger.pages = []*ledger.ObjectsPage{{
		Data: []ledger.Object{
			{ID: "0xok", Fields: rawOK},
			{ID: "0xbad", Fields: rawBad},
			{ID: "0xplain", Fields: rawPlain},
		},
	}}

	assets, err := env.client.FindInconsistentAssets(context.Background())
	require.NoError(t, err)
	require.Len(t, assets, 1)
	require.Equal(t, "0xbad", assets[0].ID)
}
