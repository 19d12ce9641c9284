package sqlstorage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dszqbsm/musiccrawler/spider"
	"github.com/dszqbsm/musiccrawler/sqldb"
	"go.uber.org/zap"
)

// 查找规则输出的字段
type FieldFinder interface {
	GetFields(taskName string, ruleName string) []string
}

var ErrReservedField = errors.New("rule field uses a reserved column name")

// 每张表在规则字段之后追加的列，key为数据单元中的键
var extraColumns = []struct {
	key   string
	field sqldb.Field
}{
	{key: "Url", field: sqldb.Field{Title: "_url", Type: "VARCHAR(255)"}},
	{key: "Time", field: sqldb.Field{Title: "_time", Type: "VARCHAR(255)"}},
	{key: "Run", field: sqldb.Field{Title: "_run", Type: "VARCHAR(64)"}},
}

// MySQL列名不区分大小写
func reserved(field string) bool {
	if strings.EqualFold(field, sqldb.AutoKeyColumn) {
		return true
	}
	for _, c := range extraColumns {
		if strings.EqualFold(field, c.field.Title) {
			return true
		}
	}
	return false
}

// 将数据单元分批缓存后写入数据库，每个任务一张表
type SqlStore struct {
	mu         sync.Mutex
	dataDocker []*spider.DataCell   // 待写入的数据单元
	db         sqldb.DBer
	Table      map[string]struct{} // 已创建的表
	options
}

func New(opts ...Option) (*SqlStore, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}

	db, err := sqldb.New(
		sqldb.WithConnURL(options.sqlUrl),
		sqldb.WithLogger(options.logger),
	)
	if err != nil {
		return nil, err
	}

	return NewWithDB(db, opts...), nil
}

// 使用已有的数据库连接创建存储
func NewWithDB(db sqldb.DBer, opts ...Option) *SqlStore {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	if options.fields == nil {
		options.fields = spider.TaskStore
	}
	if options.BatchCount < 1 {
		options.BatchCount = 1
	}

	s := &SqlStore{}
	s.options = options
	s.db = db
	s.Table = make(map[string]struct{})
	return s
}

/*
输入一个或多个数据单元，输出一个error

首次遇到某个任务时先建表，然后缓存数据单元，缓存达到批量数时写入数据库
*/
func (s *SqlStore) Save(dataCells ...*spider.DataCell) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, cell := range dataCells {
		name := cell.GetTableName()
		if name == "" {
			return errors.New("data cell has no task name")
		}
		if _, ok := s.Table[name]; !ok {
			columns, err := s.getFields(cell)
			if err != nil {
				return err
			}
			err = s.db.CreateTable(sqldb.TableData{
				TableName:   name,
				ColumnNames: columns,
				AutoKey:     true,
			})
			if err != nil {
				return fmt.Errorf("create table %s: %w", name, err)
			}
			s.Table[name] = struct{}{}
		}

		s.dataDocker = append(s.dataDocker, cell)
		if len(s.dataDocker) >= s.BatchCount {
			if err := s.flush(); err != nil {
				s.logger.Error("insert data failed", zap.Error(err))
			}
		}
	}
	return nil
}

func (s *SqlStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.flush()
}

// 按表分组写入缓存的数据，无论成功与否都清空缓存
func (s *SqlStore) flush() error {
	if len(s.dataDocker) == 0 {
		return nil
	}
	defer func() {
		s.dataDocker = nil
	}()

	var order []string
	groups := make(map[string][]*spider.DataCell)
	for _, cell := range s.dataDocker {
		name := cell.GetTableName()
		if _, ok := groups[name]; !ok {
			order = append(order, name)
		}
		groups[name] = append(groups[name], cell)
	}

	var errs []error
	for _, name := range order {
		if err := s.insert(name, groups[name]); err != nil {
			errs = append(errs, fmt.Errorf("insert %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func (s *SqlStore) insert(table string, cells []*spider.DataCell) error {
	columns, err := s.getFields(cells[0])
	if err != nil {
		return err
	}

	args := make([]interface{}, 0, len(columns)*len(cells))
	count := 0
	for _, cell := range cells {
		row, err := s.row(cell)
		if err != nil {
			s.logger.Warn("skip data cell", zap.String("table", table), zap.Error(err))
			continue
		}
		args = append(args, row...)
		count++
	}

	return s.db.Insert(sqldb.TableData{
		TableName:   table,
		ColumnNames: columns,
		Args:        args,
		DataCount:   count,
	})
}

// 按字段顺序取出一行的值，非字符串的值序列化为JSON
func (s *SqlStore) row(cell *spider.DataCell) ([]interface{}, error) {
	fields := s.fields.GetFields(cell.GetTaskName(), cell.GetRuleName())
	data, ok := cell.Data["Data"].(map[string]interface{})
	if !ok {
		return nil, errors.New("data cell has no Data map")
	}

	row := make([]interface{}, 0, len(fields)+len(extraColumns))
	for _, field := range fields {
		row = append(row, toColumn(data[field]))
	}
	for _, c := range extraColumns {
		row = append(row, toColumn(cell.Data[c.key]))
	}
	return row, nil
}

func toColumn(v interface{}) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		j, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(j)
	}
}

// 列由规则的输出字段加上_url、_time、_run组成，规则字段不能占用保留列名
func (s *SqlStore) getFields(cell *spider.DataCell) ([]sqldb.Field, error) {
	taskName := cell.GetTaskName()
	ruleName := cell.GetRuleName()
	if taskName == "" || ruleName == "" {
		return nil, errors.New("data cell has no Task or Rule")
	}

	var columnNames []sqldb.Field
	for _, field := range s.fields.GetFields(taskName, ruleName) {
		if reserved(field) {
			return nil, fmt.Errorf("%w: %s in %s/%s", ErrReservedField, field, taskName, ruleName)
		}
		columnNames = append(columnNames, sqldb.Field{
			Title: field,
			Type:  "MEDIUMTEXT",
		})
	}
	for _, c := range extraColumns {
		columnNames = append(columnNames, c.field)
	}
	return columnNames, nil
}
