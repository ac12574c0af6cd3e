package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/greenunimind/api/internal/domain"
)

// CategoryRepo provides typed DynamoDB operations for the categories and
// subcategories tables.
type CategoryRepo struct {
	client      *dynamodb.Client
	catTable    string
	subCatTable string
}

func NewCategoryRepo(client *dynamodb.Client, catTable, subCatTable string) *CategoryRepo {
	return &CategoryRepo{client: client, catTable: catTable, subCatTable: subCatTable}
}

func (r *CategoryRepo) PutCategory(ctx context.Context, c *domain.Category) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal category: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.catTable),
		Item:      item,
	})
	return err
}

func (r *CategoryRepo) PutSubCategory(ctx context.Context, s *domain.SubCategory) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal subcategory: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.subCatTable),
		Item:      item,
	})
	return err
}

// CountCategories returns the number of category items, used to decide
// whether the default catalogue needs seeding.
func (r *CategoryRepo) CountCategories(ctx context.Context) (int, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.catTable),
		Select:    types.SelectCount,
	})
	if err != nil {
		return 0, err
	}
	return int(out.Count), nil
}

func (r *CategoryRepo) ListActiveCategories(ctx context.Context) ([]domain.Category, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.catTable),
		FilterExpression: aws.String("is_active = :t"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err != nil {
		return nil, err
	}
	var cats []domain.Category
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *CategoryRepo) ListActiveSubCategories(ctx context.Context) ([]domain.SubCategory, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.subCatTable),
		FilterExpression: aws.String("is_active = :t"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err != nil {
		return nil, err
	}
	var subs []domain.SubCategory
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}
