package services

import (
	"context"
	"strings"
	"testing"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePresigner struct {
	input   *s3.PutObjectInput
	options s3.PresignOptions
}

func (p *fakePresigner) PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	p.input = params
	for _, fn := range optFns {
		fn(&p.options)
	}
	return &v4.PresignedHTTPRequest{URL: "https://signed.example.com/" + *params.Key, Method: "PUT"}, nil
}

// fakeBucket answers HeadObject for the keys it holds
type fakeBucket struct {
	keys map[string]bool
}

func (b *fakeBucket) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if !b.keys[*params.Key] {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func newAvatars(env *testEnv) (*AvatarService, *fakePresigner, *fakeBucket) {
	presigner := &fakePresigner{}
	bucket := &fakeBucket{keys: map[string]bool{}}
	avatars := NewAvatarServiceWithClients(presigner, bucket, env.db.Users(), "bucket", "https://cdn.example.com")
	return avatars, presigner, bucket
}

func TestAvatarUploadURL(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.signup(t, "testuser")
	avatars, presigner, _ := newAvatars(env)

	res, err := avatars.GetUploadURL(ctx, user.ID, "image/png")
	require.NoError(t, err)

	key := *presigner.input.Key
	assert.True(t, strings.HasPrefix(key, "avatars/"+user.ID+"/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.Equal(t, "bucket", *presigner.input.Bucket)
	assert.Equal(t, "image/png", *presigner.input.ContentType)
	assert.Equal(t, avatarURLExpiry, presigner.options.Expires)

	assert.Equal(t, key, res.Key)
	assert.Equal(t, "https://signed.example.com/"+key, res.UploadURL)
	assert.Equal(t, "https://cdn.example.com/"+key, res.AvatarURL)
	assert.Equal(t, 300, res.ExpiresIn)

	// nothing is stored until the upload is confirmed
	stored, err := env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.AvatarURL)
}

func TestAvatarConfirmUpload(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.signup(t, "testuser")
	avatars, _, bucket := newAvatars(env)

	res, err := avatars.GetUploadURL(ctx, user.ID, "image/jpeg")
	require.NoError(t, err)

	_, err = avatars.ConfirmUpload(ctx, user.ID, res.Key)
	assert.ErrorIs(t, err, ErrAvatarNotUploaded)
	stored, err := env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.AvatarURL)

	bucket.keys[res.Key] = true
	avatarURL, err := avatars.ConfirmUpload(ctx, user.ID, res.Key)
	require.NoError(t, err)
	assert.Equal(t, res.AvatarURL, avatarURL)

	stored, err = env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AvatarURL)
	assert.Equal(t, res.AvatarURL, *stored.AvatarURL)
}

func TestAvatarConfirmRejectsForeignKeys(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.signup(t, "alice")
	bob := env.signup(t, "bob")
	avatars, _, bucket := newAvatars(env)

	res, err := avatars.GetUploadURL(ctx, alice.ID, "image/png")
	require.NoError(t, err)
	bucket.keys[res.Key] = true

	for _, key := range []string{res.Key, "avatars/" + bob.ID + "/", "avatars/" + bob.ID + "/x/y.png", "other/" + bob.ID + "/a.png"} {
		_, err := avatars.ConfirmUpload(ctx, bob.ID, key)
		assert.ErrorIs(t, err, ErrInvalidAvatarKey, key)
	}
}

func TestAvatarRejectsNonImages(t *testing.T) {
	env := newTestEnv(t)
	user := env.signup(t, "testuser")
	avatars, presigner, _ := newAvatars(env)

	_, err := avatars.GetUploadURL(context.Background(), user.ID, "application/pdf")
	assert.ErrorIs(t, err, ErrUnsupportedImage)
	assert.Nil(t, presigner.input)
}
