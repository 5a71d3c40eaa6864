package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sysu-ecnc-dev/shift-board/internal/config"
	"github.com/sysu-ecnc-dev/shift-board/internal/repository"
	"github.com/sysu-ecnc-dev/shift-board/internal/seed"
)

func main() {
	var op int
	var n int
	var file string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机员工, 2: 在本周插入随机班次, 3: 从 CSV 导入班次)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.StringVar(&file, "file", "", "要导入的 CSV 文件")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", "error", err)
		os.Exit(1)
	}

	db, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, db)

	switch op {
	case 0:
		logger.Error("未指定操作")
	case 1:
		if n <= 0 {
			logger.Error("请输入合法的用户数量")
			return
		}
		cnt := seed.Users(repo, n, cfg.Seed.User.Password, cfg.Email.UserDomain)
		logger.Info("插入员工成功", "count", cnt)
	case 2:
		if n <= 0 {
			logger.Error("请输入合法的班次数量")
			return
		}
		cnt := seed.Shifts(repo, n, time.Now())
		logger.Info("插入班次成功", "count", cnt)
	case 3:
		f, err := os.Open(file)
		if err != nil {
			logger.Error("打开文件失败", "file", file, "error", err)
			return
		}
		defer f.Close()

		cnt, err := seed.ImportShifts(repo, f)
		if err != nil {
			logger.Error("导入班次失败", "error", err)
		}
		logger.Info("导入班次完成", "count", cnt)
	default:
		logger.Error("指定的操作非法")
	}
}
