// Package db is the document-store gateway. Documents live in one DynamoDB
// table: an entity document is keyed (pk=path, sk="meta") and its child
// collections are keyed (pk=path, sk="<collection>/<id>"). Field-equality
// lookups go through a per-field GSI named "<field>-index".
package db

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"workpulse/internal/apperrors"
)

const metaSortKey = "meta"

type removeField struct{}

// RemoveField is the delete-field sentinel. A field saved with this value is
// removed from the stored document, distinguishing "omit" from "explicitly
// remove" on partial updates.
var RemoveField = removeField{}

type Store struct {
	client *dynamodb.Client
	table  string
}

func NewStore(client *dynamodb.Client, table string) *Store {
	return &Store{client: client, table: table}
}

// ChildDocument is one member of a child collection write.
type ChildDocument struct {
	ID   string
	Data any
}

// DocPath builds the document path for an entity.
func DocPath(collection, id string) string {
	return collection + "/" + id
}

// GetDocument fetches the document at path into out. The second return is
// false when no document exists.
func (s *Store) GetDocument(ctx context.Context, path string, out any) (bool, error) {
	res, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       documentKey(path, metaSortKey),
	})
	if err != nil {
		return false, fmt.Errorf("[DocumentStore] get %s: %w: %w", path, apperrors.ErrUpstream, err)
	}
	if len(res.Item) == 0 {
		return false, nil
	}
	if err := attributevalue.UnmarshalMap(res.Item, out); err != nil {
		return false, fmt.Errorf("[DocumentStore] unmarshal %s: %w", path, err)
	}
	return true, nil
}

// QueryByField fetches the documents of a collection whose field equals
// value, via the field's GSI.
func (s *Store) QueryByField(ctx context.Context, collection, field, value string, out any) error {
	res, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		IndexName:              aws.String(field + "-index"),
		KeyConditionExpression: aws.String("#f = :v"),
		FilterExpression:       aws.String("#c = :c"),
		ExpressionAttributeNames: map[string]string{
			"#f": field,
			"#c": "collection",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: value},
			":c": &types.AttributeValueMemberS{Value: collection},
		},
	})
	if err != nil {
		return fmt.Errorf("[DocumentStore] query %s by %s: %w: %w", collection, field, apperrors.ErrUpstream, err)
	}
	if err := attributevalue.UnmarshalListOfMaps(res.Items, out); err != nil {
		return fmt.Errorf("[DocumentStore] unmarshal %s query: %w", collection, err)
	}
	return nil
}

// ScanCollection fetches every document of a collection.
func (s *Store) ScanCollection(ctx context.Context, collection string, out any) error {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(s.table),
		FilterExpression: aws.String("#c = :c AND #sk = :meta"),
		ExpressionAttributeNames: map[string]string{
			"#c":  "collection",
			"#sk": "sk",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c":    &types.AttributeValueMemberS{Value: collection},
			":meta": &types.AttributeValueMemberS{Value: metaSortKey},
		},
	}

	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("[DocumentStore] scan %s: %w: %w", collection, apperrors.ErrUpstream, err)
		}
		items = append(items, page.Items...)
	}

	if err := attributevalue.UnmarshalListOfMaps(items, out); err != nil {
		return fmt.Errorf("[DocumentStore] unmarshal %s scan: %w", collection, err)
	}
	return nil
}

// SaveDocument merges fields into the document at collection/id, creating it
// when absent. Fields valued RemoveField are removed from the document.
func (s *Store) SaveDocument(ctx context.Context, collection, id string, fields map[string]any) error {
	merged := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		merged[k] = v
	}
	merged["id"] = id
	merged["collection"] = collection

	expr, names, values, err := buildUpdateExpression(merged)
	if err != nil {
		return fmt.Errorf("[DocumentStore] save %s/%s: %w", collection, id, err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       documentKey(DocPath(collection, id), metaSortKey),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		return fmt.Errorf("[DocumentStore] save %s/%s: %w: %w", collection, id, apperrors.ErrUpstream, err)
	}
	return nil
}

// SaveWithChildren merges fields into the document at path and inserts the
// child documents under path/<childCollection>/ in a single transactional
// write. Either everything commits or nothing does; readers never observe a
// partial update.
func (s *Store) SaveWithChildren(ctx context.Context, path string, fields map[string]any, childCollection string, children []ChildDocument) error {
	expr, names, values, err := buildUpdateExpression(fields)
	if err != nil {
		return fmt.Errorf("[DocumentStore] transact %s: %w", path, err)
	}

	items := make([]types.TransactWriteItem, 0, len(children)+1)
	items = append(items, types.TransactWriteItem{
		Update: &types.Update{
			TableName:                 aws.String(s.table),
			Key:                       documentKey(path, metaSortKey),
			UpdateExpression:          aws.String(expr),
			ExpressionAttributeNames:  names,
			ExpressionAttributeValues: values,
		},
	})

	for _, child := range children {
		item, err := attributevalue.MarshalMap(child.Data)
		if err != nil {
			return fmt.Errorf("[DocumentStore] marshal child %s: %w", child.ID, err)
		}
		item["pk"] = &types.AttributeValueMemberS{Value: path}
		item["sk"] = &types.AttributeValueMemberS{Value: childCollection + "/" + child.ID}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName: aws.String(s.table),
				Item:      item,
			},
		})
	}

	if _, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	}); err != nil {
		return fmt.Errorf("[DocumentStore] transact %s: %w: %w", path, apperrors.ErrUpstream, err)
	}

	slog.Info("[DocumentStore] committed analysis transactionally",
		slog.String("path", path),
		slog.Int("children", len(children)))
	return nil
}

// GetChildren fetches every document of a child collection, in sort-key
// order.
func (s *Store) GetChildren(ctx context.Context, path, childCollection string, out any) error {
	res, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("#pk = :pk AND begins_with(#sk, :prefix)"),
		ExpressionAttributeNames: map[string]string{
			"#pk": "pk",
			"#sk": "sk",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: path},
			":prefix": &types.AttributeValueMemberS{Value: childCollection + "/"},
		},
	})
	if err != nil {
		return fmt.Errorf("[DocumentStore] children of %s: %w: %w", path, apperrors.ErrUpstream, err)
	}
	if err := attributevalue.UnmarshalListOfMaps(res.Items, out); err != nil {
		return fmt.Errorf("[DocumentStore] unmarshal children of %s: %w", path, err)
	}
	return nil
}

// DeleteDocument removes the document at path together with all of its
// children.
func (s *Store) DeleteDocument(ctx context.Context, path string) error {
	res, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("#pk = :pk"),
		ProjectionExpression:   aws.String("#pk, #sk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": "pk",
			"#sk": "sk",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: path},
		},
	})
	if err != nil {
		return fmt.Errorf("[DocumentStore] delete %s: %w: %w", path, apperrors.ErrUpstream, err)
	}

	const maxBatchSize = 25
	for start := 0; start < len(res.Items); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(res.Items) {
			end = len(res.Items)
		}

		writeRequests := make([]types.WriteRequest, 0, end-start)
		for _, item := range res.Items[start:end] {
			writeRequests = append(writeRequests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: item},
			})
		}

		out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{s.table: writeRequests},
		})
		if err != nil {
			return fmt.Errorf("[DocumentStore] delete %s: %w: %w", path, apperrors.ErrUpstream, err)
		}

		// Retry unprocessed deletes with backoff
		retryCount := 0
		backoff := 500 * time.Millisecond
		for len(out.UnprocessedItems) > 0 && retryCount < 3 {
			time.Sleep(backoff)
			backoff *= 2
			slog.Warn("[DocumentStore] Retrying unprocessed deletes...",
				slog.Int("retry_attempt", retryCount+1),
				slog.Int("remaining_items", len(out.UnprocessedItems[s.table])))

			out, err = s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: out.UnprocessedItems,
			})
			if err != nil {
				return fmt.Errorf("[DocumentStore] delete retry %s: %w: %w", path, apperrors.ErrUpstream, err)
			}
			retryCount++
		}
		if len(out.UnprocessedItems) > 0 {
			return fmt.Errorf("[DocumentStore] delete %s left unprocessed items: %w", path, apperrors.ErrUpstream)
		}
	}
	return nil
}

func documentKey(path, sortKey string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: path},
		"sk": &types.AttributeValueMemberS{Value: sortKey},
	}
}

// buildUpdateExpression turns a field map into a deterministic
// SET ... REMOVE ... expression. RemoveField values become REMOVE clauses.
func buildUpdateExpression(fields map[string]any) (string, map[string]string, map[string]types.AttributeValue, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	names := make(map[string]string, len(fields))
	values := make(map[string]types.AttributeValue)
	var sets, removes []string

	for i, key := range keys {
		nameRef := fmt.Sprintf("#f%d", i)
		names[nameRef] = key

		if _, isRemove := fields[key].(removeField); isRemove {
			removes = append(removes, nameRef)
			continue
		}

		valueRef := fmt.Sprintf(":v%d", i)
		av, err := attributevalue.Marshal(fields[key])
		if err != nil {
			return "", nil, nil, fmt.Errorf("marshal field %q: %w", key, err)
		}
		values[valueRef] = av
		sets = append(sets, nameRef+" = "+valueRef)
	}

	expr := ""
	if len(sets) > 0 {
		expr = "SET " + joinClauses(sets)
	}
	if len(removes) > 0 {
		if expr != "" {
			expr += " "
		}
		expr += "REMOVE " + joinClauses(removes)
	}
	if expr == "" {
		return "", nil, nil, fmt.Errorf("no fields to update")
	}
	return expr, names, values, nil
}

func joinClauses(clauses []string) string {
	out := clauses[0]
	for _, c := range clauses[1:] {
		out += ", " + c
	}
	return out
}
