package sqldb

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

var ErrEmptyColumn = errors.New("column can not be empty")

// 自增主键的列名，带下划线前缀避免和数据字段重名
const AutoKeyColumn = "_id"

// 存储层依赖的数据库操作
type DBer interface {
	CreateTable(t TableData) error
	Insert(t TableData) error
	DropTable(t TableData) error
}

type Sqldb struct {
	options
	db *sql.DB
}

// 表中的一个字段
type Field struct {
	Title string
	Type  string
}

type TableData struct {
	TableName   string
	ColumnNames []Field
	Args        []interface{} // 按行展开的数据，长度为列数乘以DataCount
	DataCount   int           // 插入的行数
	AutoKey     bool          // 是否添加自增主键列AutoKeyColumn
}

func New(opts ...Option) (*Sqldb, error) {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	d := &Sqldb{}
	d.options = options
	if err := d.OpenDB(); err != nil {
		return nil, err
	}
	return d, nil
}

// 打开连接并通过ping确认数据库可用
func (d *Sqldb) OpenDB() error {
	db, err := sql.Open("mysql", d.sqlUrl)
	if err != nil {
		return fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(d.maxOpenConns)
	db.SetMaxIdleConns(d.maxOpenConns)
	if err = db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("ping mysql: %w", err)
	}
	d.db = db
	return nil
}

func (d *Sqldb) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

/*
输入一个TableData实例，输出一个error

根据TableData中的列构造建表语句，表已存在时不做任何事
*/
func (d *Sqldb) CreateTable(t TableData) error {
	if len(t.ColumnNames) == 0 {
		return ErrEmptyColumn
	}

	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS " + quote(t.TableName) + " (")
	if t.AutoKey {
		b.WriteString(quote(AutoKeyColumn) + " INT(12) NOT NULL PRIMARY KEY AUTO_INCREMENT,")
	}
	for i, c := range t.ColumnNames {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(quote(c.Title) + " " + c.Type)
	}
	b.WriteString(") ENGINE=MyISAM DEFAULT CHARSET=utf8mb4;")

	sql := b.String()
	d.logger.Debug("create table", zap.String("sql", sql))

	_, err := d.db.Exec(sql)
	return err
}

func (d *Sqldb) DropTable(t TableData) error {
	if t.TableName == "" {
		return errors.New("table name can not be empty")
	}

	sql := "DROP TABLE " + quote(t.TableName)
	d.logger.Debug("drop table", zap.String("sql", sql))

	_, err := d.db.Exec(sql)
	return err
}

/*
输入一个TableData实例，输出一个error

构造一条多行插入语句，形如INSERT INTO `users`(`id`,`name`) VALUES (?,?),(?,?);，参数个数必须等于列数乘以行数
*/
func (d *Sqldb) Insert(t TableData) error {
	if len(t.ColumnNames) == 0 {
		return ErrEmptyColumn
	}
	if t.DataCount <= 0 {
		return nil
	}
	if len(t.Args) != len(t.ColumnNames)*t.DataCount {
		return fmt.Errorf("insert %s: got %d args for %d rows of %d columns",
			t.TableName, len(t.Args), t.DataCount, len(t.ColumnNames))
	}

	titles := make([]string, 0, len(t.ColumnNames))
	for _, c := range t.ColumnNames {
		titles = append(titles, quote(c.Title))
	}

	row := "(" + strings.Repeat(",?", len(t.ColumnNames))[1:] + ")"
	sql := "INSERT INTO " + quote(t.TableName) + "(" + strings.Join(titles, ",") + ") VALUES " +
		strings.Repeat(","+row, t.DataCount)[1:] + ";"

	d.logger.Debug("insert table", zap.String("sql", sql), zap.Int("rows", t.DataCount))

	_, err := d.db.Exec(sql, t.Args...)
	return err
}

func quote(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
