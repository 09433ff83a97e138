package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

const (
	attrUserID     = "user_id"
	attrPaletteIDs = "palette_ids"
	attrUpdatedAt  = "updated_at"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoStore.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// DynamoStore implements Store using DynamoDB. A user's palettes live in a
// single item keyed by user_id, with per-palette attributes p<id>n and p<id>c.
type DynamoStore struct {
	client    DynamoAPI
	tableName string
	now       func() time.Time
}

// NewDynamoStore creates a DynamoDB client and returns a DynamoStore.
func NewDynamoStore(ctx context.Context, cfg Config) (*DynamoStore, error) {
	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(cfg.AWSRegion))

	if cfg.DynamoEndpoint != "" {
		opts = append(opts, config.WithBaseEndpoint(cfg.DynamoEndpoint))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return newDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.DynamoTableName), nil
}

func newDynamoStore(client DynamoAPI, tableName string) *DynamoStore {
	return &DynamoStore{
		client:    client,
		tableName: tableName,
		now:       time.Now,
	}
}

func (s *DynamoStore) key(userID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrUserID: &types.AttributeValueMemberS{Value: userID},
	}
}

func (s *DynamoStore) timestamp() types.AttributeValue {
	return &types.AttributeValueMemberS{Value: s.now().UTC().Format(time.RFC3339)}
}

func (s *DynamoStore) GetPalettes(ctx context.Context, userID string) ([]Palette, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &s.tableName,
		Key:            s.key(userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, storeError("GetItem", err)
	}

	if out.Item == nil {
		return []Palette{}, nil
	}

	return unmarshalPalettes(out.Item)
}

func (s *DynamoStore) CreatePalette(ctx context.Context, userID string, paletteID string, name *string, colors []string) error {
	colorsAV, err := attributevalue.Marshal(colors)
	if err != nil {
		return fmt.Errorf("marshal colors: %w", err)
	}

	// SET #pids = list_append(if_not_exists(#pids, :empty), :pid), #cn = :cv[, #nn = :nv]
	updateExpr := "SET #pids = list_append(if_not_exists(#pids, :empty), :pid), #cn = :cv, #u = :now"
	exprNames := map[string]string{
		"#pids": attrPaletteIDs,
		"#cn":   colorsAttr(paletteID),
		"#u":    attrUpdatedAt,
	}
	exprValues := map[string]types.AttributeValue{
		":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
		":pid": &types.AttributeValueMemberL{Value: []types.AttributeValue{
			&types.AttributeValueMemberS{Value: paletteID},
		}},
		":cv":  colorsAV,
		":now": s.timestamp(),
	}

	if name != nil && *name != "" {
		updateExpr += ", #nn = :nv"
		exprNames["#nn"] = nameAttr(paletteID)
		exprValues[":nv"] = &types.AttributeValueMemberS{Value: *name}
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 &s.tableName,
		Key:                       s.key(userID),
		UpdateExpression:          &updateExpr,
		ExpressionAttributeNames:  exprNames,
		ExpressionAttributeValues: exprValues,
	})
	if err != nil {
		return storeError("UpdateItem (create)", err)
	}

	return nil
}

func (s *DynamoStore) DeletePalette(ctx context.Context, userID string, paletteID string, index int) error {
	// List indexes cannot be expression placeholders.
	element := attrPaletteIDs + "[" + strconv.Itoa(index) + "]"
	updateExpr := "SET #u = :now REMOVE #nn, #cn, " + element
	condExpr := element + " = :pid"

	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        &s.tableName,
		Key:              s.key(userID),
		UpdateExpression: &updateExpr,
		ExpressionAttributeNames: map[string]string{
			"#nn": nameAttr(paletteID),
			"#cn": colorsAttr(paletteID),
			"#u":  attrUpdatedAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pid": &types.AttributeValueMemberS{Value: paletteID},
			":now": s.timestamp(),
		},
		ConditionExpression: &condExpr,
	})
	if err != nil {
		return storeError("UpdateItem (delete)", err)
	}

	return nil
}

func (s *DynamoStore) RenamePalette(ctx context.Context, userID string, paletteID string, name string) error {
	updateExpr := "SET #nn = :nv, #u = :now"

	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        &s.tableName,
		Key:              s.key(userID),
		UpdateExpression: &updateExpr,
		ExpressionAttributeNames: map[string]string{
			"#nn": nameAttr(paletteID),
			"#u":  attrUpdatedAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":nv":  &types.AttributeValueMemberS{Value: name},
			":now": s.timestamp(),
		},
	})
	if err != nil {
		return storeError("UpdateItem (rename)", err)
	}

	return nil
}

// unmarshalPalettes zips palette_ids with the per-palette name and colors attributes.
func unmarshalPalettes(item map[string]types.AttributeValue) ([]Palette, error) {
	var ids []string
	if av, ok := item[attrPaletteIDs]; ok {
		if err := attributevalue.Unmarshal(av, &ids); err != nil {
			return nil, fmt.Errorf("%s attribute: %w", attrPaletteIDs, err)
		}
	}

	palettes := make([]Palette, 0, len(ids))
	for _, id := range ids {
		p := Palette{ID: id, Colors: []string{}}

		if av, ok := item[nameAttr(id)]; ok {
			var name string
			if err := attributevalue.Unmarshal(av, &name); err != nil {
				return nil, fmt.Errorf("%s attribute: %w", nameAttr(id), err)
			}
			p.Name = &name
		}

		if av, ok := item[colorsAttr(id)]; ok {
			if err := attributevalue.Unmarshal(av, &p.Colors); err != nil {
				return nil, fmt.Errorf("%s attribute: %w", colorsAttr(id), err)
			}
		}

		palettes = append(palettes, p)
	}

	return palettes, nil
}

// storeError converts SDK errors into the store's error vocabulary.
func storeError(op string, err error) error {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return ErrConditionFailed
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return &StoreError{Op: op, Code: apiErr.ErrorCode(), Message: apiErr.ErrorMessage(), Err: err}
	}

	return fmt.Errorf("%s: %w", op, err)
}
