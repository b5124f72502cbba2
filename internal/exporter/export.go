package exporter

import (
	"encoding/csv"
	"fmt"
	"os"

	"firewall_feature_collector/internal/model"
)

// WriteCSV 把特征行序列化到数据集文件
// appendMode=false 或文件不存在时重建文件并写表头；
// 追加到已有文件时不再写表头。每行固定13列，缺失值写空
func WriteCSV(rows []model.FeatureRow, path string, appendMode bool) error {
	fileExists := false
	if _, err := os.Stat(path); err == nil {
		fileExists = true
	}

	doAppend := appendMode && fileExists
	flags := os.O_WRONLY | os.O_CREATE
	if doAppend {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return fmt.Errorf("打开数据集文件失败: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if !doAppend {
		if err := writer.Write(model.FeatureColumns); err != nil {
			return fmt.Errorf("写入表头失败: %w", err)
		}
	}

	for i := range rows {
		if err := writer.Write(rows[i].Record()); err != nil {
			return fmt.Errorf("写入数据行失败: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
