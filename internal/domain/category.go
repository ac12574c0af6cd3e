package domain

import "time"

type Category struct {
	CategoryID  string    `json:"id" dynamodbav:"category_id"`
	Name        string    `json:"name" dynamodbav:"name"`
	Slug        string    `json:"slug" dynamodbav:"slug"`
	Description string    `json:"description" dynamodbav:"description"`
	Icon        string    `json:"icon" dynamodbav:"icon"`
	IsActive    bool      `json:"isActive" dynamodbav:"is_active"`
	CreatedAt   time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

type SubCategory struct {
	SubCategoryID string    `json:"id" dynamodbav:"subcategory_id"`
	CategoryID    string    `json:"categoryId" dynamodbav:"category_id"`
	Name          string    `json:"name" dynamodbav:"name"`
	Slug          string    `json:"slug" dynamodbav:"slug"`
	Description   string    `json:"description" dynamodbav:"description"`
	IsActive      bool      `json:"isActive" dynamodbav:"is_active"`
	CreatedAt     time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

// CategoryWithSubs is the browse-tree shape returned to clients.
type CategoryWithSubs struct {
	Category
	Subcategories []SubCategory `json:"subcategories"`
}
