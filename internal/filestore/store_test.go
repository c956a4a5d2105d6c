package filestore

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/wpmigrate/internal/config"
)

func TestNewUnknownType(t *testing.T) {
	_, err := New(config.FileStoreConfig{Type: "ftp", Data: map[string]interface{}{}})
	require.Error(t, err)
}

func TestLocalStoreSaveAndExists(t *testing.T) {
	dir := t.TempDir()
	store, err := New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{"dir": dir}})
	require.NoError(t, err)
	ctx := context.Background()

	ok, err := store.Exists(ctx, "2021/11/a.png")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Save(ctx, "2021/11/a.png", bytes.NewReader([]byte("png")), 3))
	ok, err = store.Exists(ctx, "2021/11/a.png")
	require.NoError(t, err)
	require.True(t, ok)

	data, err := os.ReadFile(filepath.Join(dir, "2021", "11", "a.png"))
	require.NoError(t, err)
	require.Equal(t, "png", string(data))
	_, err = os.Stat(filepath.Join(dir, "2021", "11", "a.png.part"))
	require.True(t, os.IsNotExist(err))
}

func TestLocalStoreRejectsEscapingKeys(t *testing.T) {
	store, err := New(config.FileStoreConfig{Type: "local", Data: map[string]interface{}{"dir": t.TempDir()}})
	require.NoError(t, err)
	for _, key := range []string{"", "../x", "a/../../x", "a//b"} {
		err := store.Save(context.Background(), key, bytes.NewReader(nil), 0)
		require.Error(t, err, key)
	}
}

type mockObjectAPI struct {
	mock.Mock
}

func (m *mockObjectAPI) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(*params.Key)
	out, _ := args.Get(0).(*s3.HeadObjectOutput)
	return out, args.Error(1)
}

func (m *mockObjectAPI) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(*params.Key)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func TestS3StoreUsesPrefix(t *testing.T) {
	api := &mockObjectAPI{}
	api.On("HeadObject", "site/media/2021/11/a.png").Return(nil, &types.NotFound{})
	api.On("HeadObject", "site/media/2021/11/b.png").Return(&s3.HeadObjectOutput{}, nil)
	api.On("PutObject", "site/media/2021/11/a.png").Return(&s3.PutObjectOutput{}, nil)

	store := newS3Store(api, "bucket", "/site/media/")
	ctx := context.Background()

	ok, err := store.Exists(ctx, "2021/11/a.png")
	require.NoError(t, err)
	require.False(t, ok)
	ok, err = store.Exists(ctx, "2021/11/b.png")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, store.Save(ctx, "2021/11/a.png", bytes.NewReader([]byte("x")), 1))
	api.AssertExpectations(t)
}
