package main

import (
	"database/sql"
	"flag"
	"log"
	"os"
	"path/filepath"
	"sort"

	"trade-signals/internal/infrastructure/config"

	_ "github.com/lib/pq"
)

// migrate 依檔名順序套用 db/migrations 下的 .sql 檔。
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to config file")
	dir := flag.String("dir", "db/migrations", "path to migrations directory")
	dsnFlag := flag.String("dsn", "", "override database DSN")
	flag.Parse()

	dsn := *dsnFlag
	if dsn == "" {
		cfg, err := config.LoadFromFile(*cfgPath)
		if err != nil {
			log.Fatalf("讀取組態失敗: %v", err)
		}
		dsn = cfg.DB.DSN
	}
	if dsn == "" {
		log.Fatal("db.dsn 未設定，無法執行 migration")
	}

	files, err := filepath.Glob(filepath.Join(*dir, "*.sql"))
	if err != nil {
		log.Fatalf("讀取 migrations 失敗: %v", err)
	}
	if len(files) == 0 {
		log.Fatalf("目錄 %s 下找不到任何 .sql migration 檔案", *dir)
	}
	sort.Strings(files)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("連線資料庫失敗: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("資料庫無法連線: %v", err)
	}

	for _, f := range files {
		stmt, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("讀取檔案 %s 失敗: %v", f, err)
		}
		log.Printf("執行 migration: %s", filepath.Base(f))
		if _, err := db.Exec(string(stmt)); err != nil {
			log.Fatalf("執行 %s 失敗: %v", filepath.Base(f), err)
		}
	}

	log.Printf("migration 完成，共套用 %d 個檔案", len(files))
}
