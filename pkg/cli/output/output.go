// Package output 提供CLI的彩色输出与表格渲染
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.Bold)
)

// Success 输出成功信息
func Success(format string, args ...interface{}) {
	successColor.Printf("✅ "+format+"\n", args...)
}

// Error 输出错误信息（到stderr）
func Error(format string, args ...interface{}) {
	errorColor.Fprintf(os.Stderr, "❌ "+format+"\n", args...)
}

// Info 输出提示信息
func Info(format string, args ...interface{}) {
	infoColor.Printf("ℹ️  "+format+"\n", args...)
}

// PrintJSON 以缩进JSON格式输出
func PrintJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化JSON失败: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// Table 等宽列对齐的文本表格
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable 创建表格
func NewTable(headers []string) *Table {
	return &Table{headers: headers}
}

// AddRow 追加一行
func (t *Table) AddRow(row []string) {
	t.rows = append(t.rows, row)
}

// Render 渲染表格到标准输出
func (t *Table) Render() {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && displayWidth(cell) > widths[i] {
				widths[i] = displayWidth(cell)
			}
		}
	}

	headerCells := make([]string, len(t.headers))
	for i, h := range t.headers {
		headerCells[i] = pad(h, widths[i])
	}
	headerColor.Println(strings.Join(headerCells, "  "))

	for _, row := range t.rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			if i < len(widths) {
				cells[i] = pad(cell, widths[i])
			} else {
				cells[i] = cell
			}
		}
		fmt.Println(strings.Join(cells, "  "))
	}
}

// displayWidth 计算显示宽度（忽略ANSI颜色转义序列）
func displayWidth(s string) int {
	width := 0
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			width++
		}
	}
	return width
}

// pad 右侧补齐空格到目标宽度
func pad(s string, width int) string {
	gap := width - displayWidth(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}
