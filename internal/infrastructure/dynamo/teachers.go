package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/greenunimind/api/internal/domain"
)

// TeacherRepo provides typed DynamoDB operations for the teachers table.
type TeacherRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewTeacherRepo(client *dynamodb.Client, tableName string) *TeacherRepo {
	return &TeacherRepo{client: client, tableName: tableName}
}

func (r *TeacherRepo) Put(ctx context.Context, t *domain.Teacher) error {
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal teacher: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *TeacherRepo) Get(ctx context.Context, teacherID string) (*domain.Teacher, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("teacher_id", teacherID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("teacher not found: %w", domain.ErrNotFound)
	}
	var t domain.Teacher
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TeacherRepo) GetByUserID(ctx context.Context, userID string) (*domain.Teacher, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("user_id-index"),
		KeyConditionExpression:    aws.String("#u = :v"),
		ExpressionAttributeNames:  map[string]string{"#u": "user_id"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: userID}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("teacher not found: %w", domain.ErrNotFound)
	}
	var t domain.Teacher
	if err := attributevalue.UnmarshalMap(out.Items[0], &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TeacherRepo) Update(ctx context.Context, teacherID string, updates map[string]interface{}) error {
	updates["updated_at"] = timestamp(time.Now())
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("teacher_id", teacherID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// IncrementCourseCount bumps total_courses atomically when a course is published.
func (r *TeacherRepo) IncrementCourseCount(ctx context.Context, teacherID string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              strKey("teacher_id", teacherID),
		UpdateExpression: aws.String("ADD total_courses :one SET updated_at = :u"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
			":u":   &types.AttributeValueMemberS{Value: timestamp(time.Now())},
		},
	})
	return err
}
