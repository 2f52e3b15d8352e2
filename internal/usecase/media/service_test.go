package media

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainUser "civicfix/internal/domain/user"
	appErrors "civicfix/pkg/errors"
)

type fakeStore struct {
	putKey         string
	putContentType string
	putErr         error
}

func (f *fakeStore) Put(_ context.Context, key, contentType string, _ []byte) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.putKey = key
	f.putContentType = contentType
	return "https://cdn.example.com/" + key, nil
}

func uploader() domainUser.Principal {
	return domainUser.Principal{UserID: uuid.New(), Role: domainUser.RoleMember}
}

func TestUploadImage_Success(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	resp, err := svc.UploadImage(context.Background(), uploader(), "image/png", []byte("png-bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(store.putKey, "issues/"))
	assert.True(t, strings.HasSuffix(store.putKey, ".png"))
	assert.Equal(t, "image/png", store.putContentType)
	assert.Equal(t, "https://cdn.example.com/"+store.putKey, resp.URL)
}

func TestUploadImage_RequiresAuthentication(t *testing.T) {
	svc := NewService(&fakeStore{})

	_, err := svc.UploadImage(context.Background(), domainUser.Anonymous, "image/png", []byte("x"))
	require.Error(t, err)
	assert.Equal(t, appErrors.CodeUnauthenticated, appErrors.CodeOf(err))
}

func TestUploadImage_RejectsUnsupportedType(t *testing.T) {
	svc := NewService(&fakeStore{})

	_, err := svc.UploadImage(context.Background(), uploader(), "image/gif", []byte("gif-bytes"))
	require.Error(t, err)
	assert.Equal(t, appErrors.CodeValidation, appErrors.CodeOf(err))
}

func TestUploadImage_SizeBounds(t *testing.T) {
	svc := NewService(&fakeStore{})
	ctx := context.Background()

	_, err := svc.UploadImage(ctx, uploader(), "image/jpeg", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.CodeValidation, appErrors.CodeOf(err))

	_, err = svc.UploadImage(ctx, uploader(), "image/jpeg", make([]byte, MaxImageBytes+1))
	require.Error(t, err)
	assert.Equal(t, appErrors.CodeValidation, appErrors.CodeOf(err))
}

func TestUploadImage_StoreFailurePassesThrough(t *testing.T) {
	storeErr := appErrors.NewAppError(appErrors.CodeUnavailable, "object storage unreachable", nil)
	svc := NewService(&fakeStore{putErr: storeErr})

	_, err := svc.UploadImage(context.Background(), uploader(), "image/webp", []byte("webp-bytes"))
	require.Error(t, err)
	assert.Equal(t, appErrors.CodeUnavailable, appErrors.CodeOf(err))
}
