package dynamo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

// exists / notExists are condition expressions on the table's hash key.
func exists(attr string) string    { return fmt.Sprintf("attribute_exists(%s)", attr) }
func notExists(attr string) string { return fmt.Sprintf("attribute_not_exists(%s)", attr) }

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// projectionExpr builds a ProjectionExpression that aliases every attribute,
// since several puzzle attribute names (location, size, ...) are reserved words.
func projectionExpr(attrs []string) (expr string, names map[string]string) {
	names = make(map[string]string, len(attrs))
	refs := make([]string, len(attrs))
	for i, a := range attrs {
		ref := fmt.Sprintf("#p%d", i)
		names[ref] = a
		refs[i] = ref
	}
	return strings.Join(refs, ", "), names
}
