// Package adapter defines how database tables are mirrored into search indices.
package adapter

import (
	"sort"
	"strings"

	"github.com/opencollective/ledger/internal/pkg/models"
)

// Index names without prefix
const (
	IndexCollectives      = "collectives"
	IndexTransactions     = "transactions"
	IndexExpenses         = "expenses"
	IndexOrders           = "orders"
	IndexComments         = "comments"
	IndexUpdates          = "updates"
	IndexHostApplications = "host-applications"
)

// field types of the index mappings
const (
	typeLong    = "long"
	typeKeyword = "keyword"
	typeText    = "text"
	typeDate    = "date"
	typeBool    = "boolean"
)

type field struct {
	column string
	kind   string
}

type definition struct {
	index         string
	table         string
	fields        []field
	textFields    []string
	accountFields []string
}

var definitions = []definition{
	{
		index: IndexCollectives,
		table: "collectives",
		fields: []field{
			{"id", typeLong}, {"slug", typeKeyword}, {"name", typeText}, {"legal_name", typeText},
			{"type", typeKeyword}, {"description", typeText}, {"long_description", typeText},
			{"website", typeKeyword}, {"tags", typeKeyword}, {"currency", typeKeyword},
			{"country_iso", typeKeyword}, {"parent_collective_id", typeLong},
			{"host_collective_id", typeLong}, {"is_active", typeBool}, {"is_host_account", typeBool},
			{"created_at", typeDate}, {"updated_at", typeDate},
		},
		textFields:    []string{"name", "slug", "legal_name", "description", "long_description", "tags"},
		accountFields: []string{"id", "parent_collective_id"},
	},
	{
		index: IndexTransactions,
		table: "transactions",
		fields: []field{
			{"id", typeLong}, {"uuid", typeKeyword}, {"kind", typeKeyword}, {"type", typeKeyword},
			{"transaction_group", typeKeyword}, {"collective_id", typeLong},
			{"from_collective_id", typeLong}, {"host_collective_id", typeLong},
			{"order_id", typeLong}, {"expense_id", typeLong}, {"amount", typeLong},
			{"currency", typeKeyword}, {"net_amount_in_collective_currency", typeLong},
			{"is_refund", typeBool}, {"is_debt", typeBool}, {"description", typeText},
			{"created_at", typeDate},
		},
		textFields:    []string{"description", "uuid", "transaction_group"},
		accountFields: []string{"collective_id", "from_collective_id", "host_collective_id"},
	},
	{
		index: IndexExpenses,
		table: "expenses",
		fields: []field{
			{"id", typeLong}, {"description", typeText}, {"long_description", typeText},
			{"type", typeKeyword}, {"status", typeKeyword}, {"amount", typeLong},
			{"currency", typeKeyword}, {"tags", typeKeyword}, {"collective_id", typeLong},
			{"from_collective_id", typeLong}, {"host_collective_id", typeLong},
			{"created_at", typeDate}, {"updated_at", typeDate},
		},
		textFields:    []string{"description", "long_description", "tags"},
		accountFields: []string{"collective_id", "from_collective_id"},
	},
	{
		index: IndexOrders,
		table: "orders",
		fields: []field{
			{"id", typeLong}, {"description", typeText}, {"status", typeKeyword},
			{"total_amount", typeLong}, {"currency", typeKeyword}, {"tags", typeKeyword},
			{"collective_id", typeLong}, {"from_collective_id", typeLong},
			{"created_at", typeDate}, {"updated_at", typeDate},
		},
		textFields:    []string{"description", "tags"},
		accountFields: []string{"collective_id", "from_collective_id"},
	},
	{
		index: IndexComments,
		table: "comments",
		fields: []field{
			{"id", typeLong}, {"html", typeText}, {"type", typeKeyword},
			{"collective_id", typeLong}, {"from_collective_id", typeLong},
			{"expense_id", typeLong}, {"update_id", typeLong},
			{"created_at", typeDate}, {"updated_at", typeDate},
		},
		textFields:    []string{"html"},
		accountFields: []string{"collective_id", "from_collective_id"},
	},
	{
		index: IndexUpdates,
		table: "updates",
		fields: []field{
			{"id", typeLong}, {"slug", typeKeyword}, {"title", typeText}, {"html", typeText},
			{"is_private", typeBool}, {"collective_id", typeLong}, {"from_collective_id", typeLong},
			{"published_at", typeDate}, {"created_at", typeDate}, {"updated_at", typeDate},
		},
		textFields:    []string{"title", "html", "slug"},
		accountFields: []string{"collective_id", "from_collective_id"},
	},
	{
		index: IndexHostApplications,
		table: "host_applications",
		fields: []field{
			{"id", typeLong}, {"message", typeText}, {"status", typeKeyword},
			{"collective_id", typeLong}, {"host_collective_id", typeLong},
			{"created_at", typeDate}, {"updated_at", typeDate},
		},
		textFields:    []string{"message"},
		accountFields: []string{"collective_id", "host_collective_id"},
	},
}

func (d definition) build(prefix string) *models.SearchAdapter {
	a := &models.SearchAdapter{
		Index:         prefix + d.index,
		Table:         d.table,
		Columns:       make([]string, 0, len(d.fields)),
		TextFields:    d.textFields,
		AccountFields: d.accountFields,
		Properties:    make(map[string]interface{}, len(d.fields)),
	}
	for _, f := range d.fields {
		a.Columns = append(a.Columns, f.column)
		a.Properties[f.column] = map[string]interface{}{"type": f.kind}
	}
	return a
}

// Registry resolves adapters by table or index name
type Registry struct {
	prefix   string
	adapters []*models.SearchAdapter
	byTable  map[string]*models.SearchAdapter
	byIndex  map[string]*models.SearchAdapter
}

// NewRegistry builds every adapter with its index name prefixed by prefix
func NewRegistry(prefix string) *Registry {
	r := &Registry{
		prefix:  prefix,
		byTable: make(map[string]*models.SearchAdapter, len(definitions)),
		byIndex: make(map[string]*models.SearchAdapter, len(definitions)),
	}
	for _, d := range definitions {
		a := d.build(prefix)
		r.adapters = append(r.adapters, a)
		r.byTable[a.Table] = a
		r.byIndex[a.Index] = a
	}
	return r
}

// All returns the adapters in a stable order
func (r *Registry) All() []*models.SearchAdapter {
	return r.adapters
}

// ByTable returns the adapter mirroring table
func (r *Registry) ByTable(table string) (*models.SearchAdapter, bool) {
	a, ok := r.byTable[table]
	return a, ok
}

// ByIndex accepts the index name with or without prefix
func (r *Registry) ByIndex(index string) (*models.SearchAdapter, bool) {
	if a, ok := r.byIndex[index]; ok {
		return a, true
	}
	if r.prefix != "" && !strings.HasPrefix(index, r.prefix) {
		a, ok := r.byIndex[r.prefix+index]
		return a, ok
	}
	return nil, false
}

// Indices returns the prefixed index names, sorted
func (r *Registry) Indices() []string {
	names := make([]string, 0, len(r.adapters))
	for _, a := range r.adapters {
		names = append(names, a.Index)
	}
	sort.Strings(names)
	return names
}
