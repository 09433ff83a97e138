package main

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDynamo records the last UpdateItem input and returns canned results.
type fakeDynamo struct {
	item      map[string]types.AttributeValue
	getErr    error
	updateErr error
	lastGet   *dynamodb.GetItemInput
	lastInput *dynamodb.UpdateItemInput
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.lastGet = in
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &dynamodb.GetItemOutput{Item: f.item}, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.lastInput = in
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func newFakeStore(f *fakeDynamo) *DynamoStore {
	s := newDynamoStore(f, "test-palettes")
	s.now = func() time.Time { return time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC) }
	return s
}

func strAV(s string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: s}
}

func listAV(ss ...string) types.AttributeValue {
	l := make([]types.AttributeValue, len(ss))
	for i, s := range ss {
		l[i] = strAV(s)
	}
	return &types.AttributeValueMemberL{Value: l}
}

func TestDynamoStore_GetPalettes(t *testing.T) {
	f := &fakeDynamo{item: map[string]types.AttributeValue{
		"user_id":     strAV("user1"),
		"palette_ids": listAV("1", "2"),
		"p1n":         strAV("midnight blues"),
		"p1c":         listAV("#333", "#666", "#999"),
		"p2c":         listAV("#000", "#fff"),
	}}
	s := newFakeStore(f)

	palettes, err := s.GetPalettes(context.Background(), "user1")
	require.NoError(t, err)

	require.Len(t, palettes, 2)
	assert.Equal(t, "1", palettes[0].ID)
	require.NotNil(t, palettes[0].Name)
	assert.Equal(t, "midnight blues", *palettes[0].Name)
	assert.Equal(t, []string{"#333", "#666", "#999"}, palettes[0].Colors)
	assert.Equal(t, "2", palettes[1].ID)
	assert.Nil(t, palettes[1].Name)
	assert.Equal(t, []string{"#000", "#fff"}, palettes[1].Colors)

	assert.Equal(t, "test-palettes", *f.lastGet.TableName)
	assert.Equal(t, strAV("user1"), f.lastGet.Key["user_id"])
}

func TestDynamoStore_GetPalettes_Empty(t *testing.T) {
	t.Run("no record", func(t *testing.T) {
		palettes, err := newFakeStore(&fakeDynamo{}).GetPalettes(context.Background(), "user1")
		require.NoError(t, err)
		assert.NotNil(t, palettes)
		assert.Empty(t, palettes)
	})

	t.Run("empty palette_ids", func(t *testing.T) {
		f := &fakeDynamo{item: map[string]types.AttributeValue{
			"user_id":     strAV("user1"),
			"palette_ids": listAV(),
		}}
		palettes, err := newFakeStore(f).GetPalettes(context.Background(), "user1")
		require.NoError(t, err)
		assert.Empty(t, palettes)
	})

	t.Run("missing colors", func(t *testing.T) {
		f := &fakeDynamo{item: map[string]types.AttributeValue{
			"user_id":     strAV("user1"),
			"palette_ids": listAV("orphan"),
		}}
		palettes, err := newFakeStore(f).GetPalettes(context.Background(), "user1")
		require.NoError(t, err)
		require.Len(t, palettes, 1)
		assert.Equal(t, []string{}, palettes[0].Colors)
	})
}

func TestDynamoStore_CreatePalette(t *testing.T) {
	f := &fakeDynamo{}
	s := newFakeStore(f)
	name := "Mos Gold"

	require.NoError(t, s.CreatePalette(context.Background(), "user1", "abc", &name, []string{"#ffdf00"}))

	in := f.lastInput
	assert.Equal(t, "SET #pids = list_append(if_not_exists(#pids, :empty), :pid), #cn = :cv, #u = :now, #nn = :nv", *in.UpdateExpression)
	assert.Equal(t, map[string]string{"#pids": "palette_ids", "#cn": "pabcc", "#nn": "pabcn", "#u": "updated_at"}, in.ExpressionAttributeNames)
	assert.Equal(t, listAV("abc"), in.ExpressionAttributeValues[":pid"])
	assert.Equal(t, listAV("#ffdf00"), in.ExpressionAttributeValues[":cv"])
	assert.Equal(t, strAV("Mos Gold"), in.ExpressionAttributeValues[":nv"])
	assert.Equal(t, strAV("2026-10-17T12:00:00Z"), in.ExpressionAttributeValues[":now"])
	assert.Nil(t, in.ConditionExpression)
}

func TestDynamoStore_CreatePalette_Unnamed(t *testing.T) {
	f := &fakeDynamo{}

	require.NoError(t, newFakeStore(f).CreatePalette(context.Background(), "user1", "abc", nil, []string{"#000"}))

	assert.NotContains(t, *f.lastInput.UpdateExpression, "#nn")
	assert.NotContains(t, f.lastInput.ExpressionAttributeNames, "#nn")
	assert.NotContains(t, f.lastInput.ExpressionAttributeValues, ":nv")
}

func TestDynamoStore_DeletePalette(t *testing.T) {
	f := &fakeDynamo{}

	require.NoError(t, newFakeStore(f).DeletePalette(context.Background(), "user1", "abc", 2))

	in := f.lastInput
	assert.Equal(t, "SET #u = :now REMOVE #nn, #cn, palette_ids[2]", *in.UpdateExpression)
	assert.Equal(t, "palette_ids[2] = :pid", *in.ConditionExpression)
	assert.Equal(t, "pabcn", in.ExpressionAttributeNames["#nn"])
	assert.Equal(t, "pabcc", in.ExpressionAttributeNames["#cn"])
	assert.Equal(t, strAV("abc"), in.ExpressionAttributeValues[":pid"])
}

func TestDynamoStore_RenamePalette(t *testing.T) {
	f := &fakeDynamo{}

	require.NoError(t, newFakeStore(f).RenamePalette(context.Background(), "user1", "abc", "Primary Colors"))

	in := f.lastInput
	assert.Equal(t, "SET #nn = :nv, #u = :now", *in.UpdateExpression)
	assert.Equal(t, "pabcn", in.ExpressionAttributeNames["#nn"])
	assert.Equal(t, strAV("Primary Colors"), in.ExpressionAttributeValues[":nv"])
	assert.Nil(t, in.ConditionExpression)
}

func TestDynamoStore_Errors(t *testing.T) {
	t.Run("conditional check", func(t *testing.T) {
		f := &fakeDynamo{updateErr: &smithy.OperationError{
			ServiceID:     "DynamoDB",
			OperationName: "UpdateItem",
			Err:           &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")},
		}}

		err := newFakeStore(f).DeletePalette(context.Background(), "user1", "abc", 1)
		require.ErrorIs(t, err, ErrConditionFailed)
		assert.Equal(t, "The conditional request failed", err.Error())
	})

	t.Run("api error", func(t *testing.T) {
		f := &fakeDynamo{updateErr: &smithy.OperationError{
			ServiceID:     "DynamoDB",
			OperationName: "UpdateItem",
			Err:           &smithy.GenericAPIError{Code: "ValidationException", Message: "Invalid UpdateExpression"},
		}}

		err := newFakeStore(f).RenamePalette(context.Background(), "user1", "abc", "x")
		var storeErr *StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "ValidationException", storeErr.Code)
		assert.Equal(t, "Invalid UpdateExpression", err.Error())
	})

	t.Run("transport error", func(t *testing.T) {
		cause := errors.New("connection refused")
		f := &fakeDynamo{getErr: cause}

		_, err := newFakeStore(f).GetPalettes(context.Background(), "user1")
		require.ErrorIs(t, err, cause)
		assert.Equal(t, "GetItem: connection refused", err.Error())
	})
}

// Integration tests require DynamoDB Local running on DYNAMODB_ENDPOINT with
// a table keyed by user_id.
// Run with: DYNAMODB_ENDPOINT=http://localhost:8000 go test -run Integration ./...

func skipIfNoEndpoint(t *testing.T) {
	t.Helper()
	if os.Getenv("DYNAMODB_ENDPOINT") == "" {
		t.Skip("DYNAMODB_ENDPOINT not set; skipping integration test")
	}
}

func testStore(t *testing.T) *DynamoStore {
	t.Helper()
	cfg := Config{
		AWSRegion:       "us-east-2",
		DynamoEndpoint:  os.Getenv("DYNAMODB_ENDPOINT"),
		DynamoTableName: "test-eighty4-colors-palettes",
	}
	// Dummy credentials for DynamoDB Local
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	store, err := NewDynamoStore(context.Background(), cfg)
	require.NoError(t, err, "failed to create store")
	return store
}

// testUser returns a fresh user id whose record is deleted after the test.
func testUser(t *testing.T, store *DynamoStore) string {
	t.Helper()
	userID := "integration-" + uuid.NewString()
	t.Cleanup(func() {
		store.client.(*dynamodb.Client).DeleteItem(context.Background(), &dynamodb.DeleteItemInput{
			TableName: &store.tableName,
			Key:       store.key(userID),
		})
	})
	return userID
}

func TestIntegration_CreateAndGet(t *testing.T) {
	skipIfNoEndpoint(t)
	store := testStore(t)
	ctx := context.Background()
	userID := testUser(t, store)

	palettes, err := store.GetPalettes(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, palettes)

	name := "Metallica (self-titled)"
	require.NoError(t, store.CreatePalette(ctx, userID, "abc", &name, []string{"#000"}))
	require.NoError(t, store.CreatePalette(ctx, userID, "def", nil, []string{"#fff", "#eee"}))

	palettes, err = store.GetPalettes(ctx, userID)
	require.NoError(t, err)
	require.Len(t, palettes, 2)
	assert.Equal(t, "abc", palettes[0].ID)
	assert.Equal(t, name, *palettes[0].Name)
	assert.Equal(t, []string{"#000"}, palettes[0].Colors)
	assert.Equal(t, "def", palettes[1].ID)
	assert.Nil(t, palettes[1].Name)
}

func TestIntegration_DeleteAndStaleIndex(t *testing.T) {
	skipIfNoEndpoint(t)
	store := testStore(t)
	ctx := context.Background()
	userID := testUser(t, store)

	require.NoError(t, store.CreatePalette(ctx, userID, "abc", nil, []string{"#ee0000"}))
	require.NoError(t, store.CreatePalette(ctx, userID, "def", nil, []string{"#ffdf00"}))

	err := store.DeletePalette(ctx, userID, "abc", 1)
	require.ErrorIs(t, err, ErrConditionFailed)

	palettes, err := store.GetPalettes(ctx, userID)
	require.NoError(t, err)
	require.Len(t, palettes, 2)

	require.NoError(t, store.DeletePalette(ctx, userID, "abc", 0))

	palettes, err = store.GetPalettes(ctx, userID)
	require.NoError(t, err)
	require.Len(t, palettes, 1)
	assert.Equal(t, "def", palettes[0].ID)
	assert.Equal(t, []string{"#ffdf00"}, palettes[0].Colors)
}

func TestIntegration_Rename(t *testing.T) {
	skipIfNoEndpoint(t)
	store := testStore(t)
	ctx := context.Background()
	userID := testUser(t, store)

	require.NoError(t, store.CreatePalette(ctx, userID, "abc", nil, []string{"#ee0000", "#eeee00", "#0000ee"}))
	require.NoError(t, store.RenamePalette(ctx, userID, "abc", "Primary Colors"))

	palettes, err := store.GetPalettes(ctx, userID)
	require.NoError(t, err)
	require.Len(t, palettes, 1)
	assert.Equal(t, "Primary Colors", *palettes[0].Name)
	assert.Equal(t, []string{"#ee0000", "#eeee00", "#0000ee"}, palettes[0].Colors)
}
