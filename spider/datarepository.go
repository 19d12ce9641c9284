package spider

// 定义了存储引擎的统一规范
type DataRepository interface {
	Save(datas ...*DataCell) error
}

// 数据单元
type DataCell struct {
	Task *Task
	Data map[string]interface{}
}

// 数据单元的表名，每个任务一张表
func (d *DataCell) GetTableName() string {
	name, _ := d.Data["Task"].(string)
	return name
}

func (d *DataCell) GetTaskName() string {
	name, _ := d.Data["Task"].(string)
	return name
}

func (d *DataCell) GetRuleName() string {
	name, _ := d.Data["Rule"].(string)
	return name
}
