package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"campus-notice/internal/common"
)

// 测试配置校验
func TestConfigValidate(t *testing.T) {
	assert.NoError(t, (&Config{Driver: DriverMemory}).Validate())
	assert.NoError(t, (&Config{Driver: DriverSQLite, DSN: "store.db"}).Validate())
	assert.Error(t, (&Config{Driver: DriverMySQL}).Validate())
	assert.Error(t, (&Config{Driver: "redis", DSN: "x"}).Validate())
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "root:***@tcp(127.0.0.1:3306)/campus", maskDSN("root:123456@tcp(127.0.0.1:3306)/campus"))
	assert.Equal(t, "campus_store.db", maskDSN("campus_store.db"))
}

// 测试打开本地存储并完成迁移
func TestOpenStore(t *testing.T) {
	cfg := Config{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "store.db")}
	conn, err := OpenStore(cfg, zap.NewNop())
	require.NoError(t, err)
	defer Close(conn)

	assert.True(t, conn.Migrator().HasTable(&KVEntry{}))
}

// 测试爬虫数据库文件不存在时报错
func TestOpenSourceMissingFile(t *testing.T) {
	_, err := OpenSource(filepath.Join(t.TempDir(), "missing.db"))
	assert.Error(t, err)
}

// 测试建表后可以按表名读写
func TestCreateSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qq_groups.db")
	conn, err := CreateSource(path, common.SourceTables...)
	require.NoError(t, err)
	defer Close(conn)

	for _, table := range common.SourceTables {
		assert.True(t, conn.Migrator().HasTable(table), table)
	}

	row := NoticeRow{Title: "蓝桥杯报名", Category: "比赛", PublishDate: "2024/03/21"}
	require.NoError(t, conn.Table(common.TableCompetitions).Create(&row).Error)
	assert.NotZero(t, row.ID)

	reopened, err := OpenSource(path)
	require.NoError(t, err)
	defer Close(reopened)

	var rows []NoticeRow
	require.NoError(t, reopened.Table(common.TableCompetitions).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "蓝桥杯报名", rows[0].Title)
	assert.Equal(t, 0, rows[0].Views)
}
