package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// taskFile 任务定义YAML文件的顶层结构（内部使用）
type taskFile struct {
	Tasks []TaskDefinition `yaml:"tasks"`
}

// LoadFromFile 从YAML文件加载任务注册表（对外导出）
// 文件格式：顶层tasks数组，每项包含id/name/duration_seconds/depends_on
func LoadFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取任务定义文件失败: %w", err)
	}

	var file taskFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("解析任务定义文件失败: %w", err)
	}

	return NewRegistry(file.Tasks)
}
