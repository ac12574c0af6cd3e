package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/greenunimind/api/internal/domain"
)

// UserRepo provides typed DynamoDB operations for the users table.
// It is the AccountStore for the verification flow: the three OTP attributes
// are written and removed together in single UpdateItem calls.
type UserRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewUserRepo(client *dynamodb.Client, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

func (r *UserRepo) Put(ctx context.Context, u *domain.User) error {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("email-index"),
		KeyConditionExpression:    aws.String("#e = :v"),
		ExpressionAttributeNames:  map[string]string{"#e": "email"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: email}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Items[0], &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	updates["updated_at"] = timestamp(time.Now())
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("user_id", userID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// SetVerificationCode writes a fresh OTP, its expiry, and the dispatch
// timestamp in one conditional update. The condition only passes when no
// verification email was sent after cutoff, so two racing resend requests
// cannot both issue a code: the loser gets domain.ErrCooldown.
// Timestamps go through timestamp() so the stored strings compare in
// chronological order inside the condition.
func (r *UserRepo) SetVerificationCode(ctx context.Context, userID, code string, expiresAt, sentAt, cutoff time.Time) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
		UpdateExpression: aws.String(
			"SET verification_code = :c, verification_expires_at = :e, last_verification_sent_at = :s, updated_at = :u"),
		ConditionExpression: aws.String(
			"attribute_not_exists(last_verification_sent_at) OR last_verification_sent_at <= :cutoff"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c":      &types.AttributeValueMemberS{Value: code},
			":e":      &types.AttributeValueMemberS{Value: timestamp(expiresAt)},
			":s":      &types.AttributeValueMemberS{Value: timestamp(sentAt)},
			":u":      &types.AttributeValueMemberS{Value: timestamp(sentAt)},
			":cutoff": &types.AttributeValueMemberS{Value: timestamp(cutoff)},
		},
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("verification email sent too recently: %w", domain.ErrCooldown)
	}
	return err
}

// ClearVerificationCode removes the outstanding OTP and its expiry. The
// last_verification_sent_at attribute is kept so an expired code does not
// reset the resend cooldown.
func (r *UserRepo) ClearVerificationCode(ctx context.Context, userID string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
		UpdateExpression: aws.String(
			"REMOVE verification_code, verification_expires_at SET updated_at = :u"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": &types.AttributeValueMemberS{Value: timestamp(time.Now())},
		},
	})
	return err
}

// MarkEmailVerified flips is_email_verified and clears the OTP attributes in
// a single update, so a verified account never carries a pending code.
func (r *UserRepo) MarkEmailVerified(ctx context.Context, userID string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
		UpdateExpression: aws.String(
			"SET is_email_verified = :t, updated_at = :u REMOVE verification_code, verification_expires_at"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberBOOL{Value: true},
			":u": &types.AttributeValueMemberS{Value: timestamp(time.Now())},
		},
	})
	return err
}
