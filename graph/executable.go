package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode"

	"bitbucket.org/mmdatafocus/pos_backend/middlewares"
	"bitbucket.org/mmdatafocus/pos_backend/models"
	"github.com/99designs/gqlgen/graphql"
	"github.com/graph-gophers/dataloader/v7"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

type Config struct {
	Resolvers  ResolverRoot
	Directives DirectiveRoot
}

type ResolverRoot interface {
	Mutation() MutationResolver
	Query() QueryResolver
}

type DirectiveRoot struct {
	HasRole func(ctx context.Context, obj interface{}, next graphql.Resolver, roles []models.UserRole) (res interface{}, err error)
}

type MutationResolver interface {
	CreateSale(ctx context.Context, input models.NewTradeTransaction) (*models.Transaction, error)
	CreatePurchase(ctx context.Context, input models.NewTradeTransaction) (*models.Transaction, error)
	CreateExpense(ctx context.Context, input models.NewCashEntry) (*models.Transaction, error)
	CreateIncome(ctx context.Context, input models.NewCashEntry) (*models.Transaction, error)
	PayDebt(ctx context.Context, transactionID int, input models.PaymentInput) (*models.PaymentResult, error)
	PayInstallment(ctx context.Context, transactionID int, input models.PaymentInput) (*models.PaymentResult, error)
	CompleteDraft(ctx context.Context, id int) (*models.Transaction, error)
	CancelTransaction(ctx context.Context, id int) (*models.Transaction, error)
	UpdatePreference(ctx context.Context, input models.NewPreference) (*models.Preference, error)
}

type QueryResolver interface {
	Transaction(ctx context.Context, id int) (*models.Transaction, error)
	Draft(ctx context.Context, id int) (*models.Transaction, error)
	PaymentHistory(ctx context.Context, transactionID int) ([]models.PaymentRecord, error)
	OutstandingBalances(ctx context.Context, asOf *time.Time) ([]models.OutstandingBalance, error)
	Preference(ctx context.Context) (*models.Preference, error)
}

// referenceField maps an object field to the id column it resolves through
// the request loaders.
type referenceField struct {
	kind  models.ReferenceKind
	idKey string
}

var referenceFields = map[string]referenceField{
	"Transaction.cashier":         {models.ReferenceKindStaff, "cashier_id"},
	"Transaction.customer":        {models.ReferenceKindCustomer, "customer_id"},
	"Transaction.supplier":        {models.ReferenceKindSupplier, "supplier_id"},
	"Transaction.deliveryStaff":   {models.ReferenceKindStaff, "delivery_staff_id"},
	"Transaction.unloadingStaff":  {models.ReferenceKindStaff, "unloading_staff_id"},
	"PaymentRecord.recordedBy":    {models.ReferenceKindStaff, "recorded_by_id"},
	"LineItem.product":            {models.ReferenceKindProduct, "product_id"},
	"LineItem.unit":               {models.ReferenceKindUnit, "unit_id"},
	"LineItem.category":           {models.ReferenceKindCategory, "category_id"},
	"LineItem.brand":              {models.ReferenceKindBrand, "brand_id"},
	"OutstandingBalance.customer": {models.ReferenceKindCustomer, "customer_id"},
	"OutstandingBalance.supplier": {models.ReferenceKindSupplier, "supplier_id"},
}

// NewExecutableSchema binds the schema in schema.graphqls to the resolvers.
// Results are marshalled through their JSON form and projected onto the
// selection set; reference fields go through the request dataloaders.
func NewExecutableSchema(cfg Config) graphql.ExecutableSchema {
	return &executableSchema{
		schema:     parsedSchema(),
		resolvers:  cfg.Resolvers,
		directives: cfg.Directives,
	}
}

type executableSchema struct {
	schema     *ast.Schema
	resolvers  ResolverRoot
	directives DirectiveRoot
}

func (e *executableSchema) Schema() *ast.Schema {
	return e.schema
}

func (e *executableSchema) Complexity(typeName, field string, childComplexity int, rawArgs map[string]interface{}) (int, bool) {
	return 0, false
}

func (e *executableSchema) Exec(ctx context.Context) graphql.ResponseHandler {
	opCtx := graphql.GetOperationContext(ctx)

	var root *ast.Definition
	switch opCtx.Operation.Operation {
	case ast.Query:
		root = e.schema.Query
	case ast.Mutation:
		root = e.schema.Mutation
	default:
		return graphql.OneShot(graphql.ErrorResponse(ctx, "unsupported GraphQL operation"))
	}

	first := true
	return func(ctx context.Context) *graphql.Response {
		if !first {
			return nil
		}
		first = false

		var buf bytes.Buffer
		e.render(ctx, &buf, e.execRoot(ctx, opCtx, root))
		return &graphql.Response{Data: buf.Bytes()}
	}
}

// output tree, rendered once every loader thunk has been queued
type outField struct {
	key   string
	value any
}

type outObject []outField

type outList []any

type referenceValue struct {
	opCtx *graphql.OperationContext
	path  ast.Path
	sel   ast.SelectionSet
	load  dataloader.Thunk[models.RefSummary]
}

// execRoot resolves root fields in document order. A null non-null root
// field nulls the whole data object.
func (e *executableSchema) execRoot(ctx context.Context, opCtx *graphql.OperationContext, root *ast.Definition) any {
	fields := graphql.CollectFields(opCtx, opCtx.Operation.SelectionSet, []string{root.Name})
	out := make(outObject, 0, len(fields))
	for _, field := range fields {
		value := e.execRootField(ctx, opCtx, root.Name, field)
		if value == nil && field.Definition != nil && field.Definition.Type.NonNull {
			return nil
		}
		out = append(out, outField{key: field.Alias, value: value})
	}
	return out
}

func (e *executableSchema) execRootField(ctx context.Context, opCtx *graphql.OperationContext, object string, field graphql.CollectedField) (ret any) {
	fc := &graphql.FieldContext{
		Object:     object,
		Field:      field,
		IsMethod:   true,
		IsResolver: true,
	}
	ctx = graphql.WithFieldContext(ctx, fc)
	defer func() {
		if r := recover(); r != nil {
			graphql.AddError(ctx, opCtx.Recover(ctx, r))
			ret = nil
		}
	}()

	switch field.Name {
	case "__typename":
		return object
	case "__schema", "__type":
		graphql.AddError(ctx, models.ErrValidation.Withf("introspection is disabled"))
		return nil
	}

	args, err := e.fieldArgs(field.Field, opCtx.Variables)
	if err != nil {
		graphql.AddError(ctx, err)
		return nil
	}
	fc.Args = args

	res, err := opCtx.ResolverMiddleware(ctx, func(rctx context.Context) (interface{}, error) {
		return e.withDirectives(rctx, field, func(dctx context.Context) (interface{}, error) {
			return e.resolveRoot(dctx, object, field.Name, args)
		})
	})
	if err != nil {
		graphql.AddError(ctx, err)
		return nil
	}

	value, err := toGeneric(res)
	if err != nil {
		graphql.AddError(ctx, err)
		return nil
	}
	return e.projectValue(ctx, opCtx, ast.Path{ast.PathName(field.Alias)}, field.Definition.Type, field.Selections, value)
}

func (e *executableSchema) withDirectives(ctx context.Context, field graphql.CollectedField, next graphql.Resolver) (interface{}, error) {
	d := field.Definition.Directives.ForName("hasRole")
	if d == nil || e.directives.HasRole == nil {
		return next(ctx)
	}
	var roles []models.UserRole
	if arg := d.Arguments.ForName("roles"); arg != nil {
		raw, err := arg.Value.Value(nil)
		if err != nil {
			return nil, err
		}
		if err := decodeInto(raw, &roles); err != nil {
			return nil, err
		}
	}
	return e.directives.HasRole(ctx, nil, next, roles)
}

func (e *executableSchema) resolveRoot(ctx context.Context, object, name string, args map[string]any) (any, error) {
	switch object + "." + name {
	case "Query.transaction":
		var id int
		if err := decodeArg(args, "id", &id); err != nil {
			return nil, err
		}
		return e.resolvers.Query().Transaction(ctx, id)
	case "Query.draft":
		var id int
		if err := decodeArg(args, "id", &id); err != nil {
			return nil, err
		}
		return e.resolvers.Query().Draft(ctx, id)
	case "Query.paymentHistory":
		var id int
		if err := decodeArg(args, "transactionId", &id); err != nil {
			return nil, err
		}
		return e.resolvers.Query().PaymentHistory(ctx, id)
	case "Query.outstandingBalances":
		var asOf *time.Time
		if err := decodeArg(args, "asOf", &asOf); err != nil {
			return nil, err
		}
		return e.resolvers.Query().OutstandingBalances(ctx, asOf)
	case "Query.preference":
		return e.resolvers.Query().Preference(ctx)

	case "Mutation.createSale", "Mutation.createPurchase":
		var input models.NewTradeTransaction
		if err := decodeArg(args, "input", &input); err != nil {
			return nil, err
		}
		if name == "createSale" {
			return e.resolvers.Mutation().CreateSale(ctx, input)
		}
		return e.resolvers.Mutation().CreatePurchase(ctx, input)
	case "Mutation.createExpense", "Mutation.createIncome":
		var input models.NewCashEntry
		if err := decodeArg(args, "input", &input); err != nil {
			return nil, err
		}
		if name == "createExpense" {
			return e.resolvers.Mutation().CreateExpense(ctx, input)
		}
		return e.resolvers.Mutation().CreateIncome(ctx, input)
	case "Mutation.payDebt", "Mutation.payInstallment":
		var id int
		var input models.PaymentInput
		if err := decodeArg(args, "transactionId", &id); err != nil {
			return nil, err
		}
		if err := decodeArg(args, "input", &input); err != nil {
			return nil, err
		}
		if name == "payDebt" {
			return e.resolvers.Mutation().PayDebt(ctx, id, input)
		}
		return e.resolvers.Mutation().PayInstallment(ctx, id, input)
	case "Mutation.completeDraft", "Mutation.cancelTransaction":
		var id int
		if err := decodeArg(args, "id", &id); err != nil {
			return nil, err
		}
		if name == "completeDraft" {
			return e.resolvers.Mutation().CompleteDraft(ctx, id)
		}
		return e.resolvers.Mutation().CancelTransaction(ctx, id)
	case "Mutation.updatePreference":
		var input models.NewPreference
		if err := decodeArg(args, "input", &input); err != nil {
			return nil, err
		}
		return e.resolvers.Mutation().UpdatePreference(ctx, input)
	}
	return nil, models.ErrValidation.Withf("unknown field %s.%s", object, name)
}

// fieldArgs coerces the field's arguments into the JSON shape of the models
// inputs: snake_case keys, Decimal and Time scalars parsed.
func (e *executableSchema) fieldArgs(field *ast.Field, vars map[string]interface{}) (map[string]any, error) {
	raw := field.ArgumentMap(vars)
	args := make(map[string]any, len(raw))
	for _, def := range field.Definition.Arguments {
		v, ok := raw[def.Name]
		if !ok {
			continue
		}
		coerced, err := e.coerceInput(def.Type, v)
		if err != nil {
			return nil, models.ErrValidation.Withf("argument %s: %v", def.Name, err)
		}
		args[def.Name] = coerced
	}
	return args, nil
}

func (e *executableSchema) coerceInput(typ *ast.Type, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if typ.Elem != nil {
		items, ok := v.([]interface{})
		if !ok {
			items = []interface{}{v}
		}
		out := make([]any, len(items))
		for i, item := range items {
			c, err := e.coerceInput(typ.Elem, item)
			if err != nil {
				return nil, err
			}
			out[i] = c
		}
		return out, nil
	}

	switch typ.Name() {
	case "Decimal":
		return UnmarshalDecimal(v)
	case "Time":
		return UnmarshalTime(v)
	}

	def := e.schema.Types[typ.Name()]
	if def == nil || def.Kind != ast.InputObject {
		return v, nil
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, gqlerror.Errorf("%s must be an object", def.Name)
	}
	out := make(map[string]any, len(m))
	for _, f := range def.Fields {
		fv, ok := m[f.Name]
		if !ok {
			continue
		}
		c, err := e.coerceInput(f.Type, fv)
		if err != nil {
			return nil, gqlerror.Errorf("%s.%s: %v", def.Name, f.Name, err)
		}
		out[snakeCase(f.Name)] = c
	}
	return out, nil
}

func (e *executableSchema) projectValue(ctx context.Context, opCtx *graphql.OperationContext, path ast.Path, typ *ast.Type, sel ast.SelectionSet, v any) any {
	if typ.Elem != nil {
		items, _ := v.([]any)
		if items == nil && !typ.NonNull {
			return nil
		}
		list := make(outList, len(items))
		for i, item := range items {
			list[i] = e.projectValue(ctx, opCtx, appendPath(path, ast.PathIndex(i)), typ.Elem, sel, item)
		}
		return list
	}
	if v == nil {
		return nil
	}

	def := e.schema.Types[typ.Name()]
	if def != nil && def.Kind == ast.Object {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		return e.project(ctx, opCtx, path, def.Name, sel, obj)
	}
	return v
}

func (e *executableSchema) project(ctx context.Context, opCtx *graphql.OperationContext, path ast.Path, typeName string, sel ast.SelectionSet, obj map[string]any) outObject {
	fields := graphql.CollectFields(opCtx, sel, []string{typeName})
	out := make(outObject, 0, len(fields))
	for _, field := range fields {
		fieldPath := appendPath(path, ast.PathName(field.Alias))
		if field.Name == "__typename" {
			out = append(out, outField{key: field.Alias, value: typeName})
			continue
		}
		if ref, ok := referenceFields[typeName+"."+field.Name]; ok {
			out = append(out, outField{key: field.Alias, value: e.loadReference(ctx, opCtx, fieldPath, ref, field.Selections, obj)})
			continue
		}
		value := e.projectValue(ctx, opCtx, fieldPath, field.Definition.Type, field.Selections, obj[snakeCase(field.Name)])
		out = append(out, outField{key: field.Alias, value: value})
	}
	return out
}

// loadReference queues the id without waiting so that every reference of a
// response lands in one batch per kind.
func (e *executableSchema) loadReference(ctx context.Context, opCtx *graphql.OperationContext, path ast.Path, ref referenceField, sel ast.SelectionSet, obj map[string]any) any {
	id := intValue(obj[ref.idKey])
	if id <= 0 {
		return nil
	}
	return &referenceValue{
		opCtx: opCtx,
		path:  path,
		sel:   sel,
		load:  middlewares.LoadReference(ctx, ref.kind, id),
	}
}

func (e *executableSchema) render(ctx context.Context, buf *bytes.Buffer, v any) {
	switch v := v.(type) {
	case nil:
		buf.WriteString("null")
	case outObject:
		buf.WriteByte('{')
		for i, f := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, _ := json.Marshal(f.key)
			buf.Write(key)
			buf.WriteByte(':')
			e.render(ctx, buf, f.value)
		}
		buf.WriteByte('}')
	case outList:
		buf.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			e.render(ctx, buf, item)
		}
		buf.WriteByte(']')
	case *referenceValue:
		summary, err := v.load()
		if err != nil {
			graphql.AddError(ctx, gqlerror.WrapPath(v.path, err))
			buf.WriteString("null")
			return
		}
		obj := map[string]any{"id": summary.Id, "name": summary.Name}
		e.render(ctx, buf, e.project(ctx, v.opCtx, v.path, "RefSummary", v.sel, obj))
	default:
		b, err := json.Marshal(v)
		if err != nil {
			graphql.AddError(ctx, err)
			buf.WriteString("null")
			return
		}
		buf.Write(b)
	}
}

func toGeneric(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeInto(v any, dest any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return models.ErrValidation.Withf("invalid input: %v", err)
	}
	return nil
}

func decodeArg(args map[string]any, name string, dest any) error {
	v, ok := args[name]
	if !ok {
		return nil
	}
	return decodeInto(v, dest)
}

func intValue(v any) int {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0
		}
		return int(i)
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func appendPath(path ast.Path, elem ast.PathElement) ast.Path {
	out := make(ast.Path, len(path), len(path)+1)
	copy(out, path)
	return append(out, elem)
}

// snakeCase maps schema field names onto the models' json tags.
func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
