package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tagphi/ipdb-search-golang/pkg/ipdb"
	"github.com/tagphi/ipdb-search-golang/pkg/utils"
)

func main() {
	// 定义命令行参数
	dbPath := flag.String("p", "", "Path to ipdb database file")
	language := flag.String("l", "", "Language code (default: first language in the database)")
	kind := flag.String("t", "map", "Record type: 'map', 'city', 'district', 'idc' or 'base_station'")
	skipByte := flag.Bool("skip-byte-length", false, "Read record length from bytes 1 and 3 (older database revisions)")
	debug := flag.Bool("debug", false, "Enable debug output")
	logFile := flag.String("log", "", "Log file for debug output (default: stdout)")

	// 解析命令行参数
	flag.Parse()

	// 设置调试模式
	utils.SetDebugEnabled(*debug)

	// 如果指定了日志文件，则将调试输出重定向到文件
	if *debug && *logFile != "" {
		file, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Printf("Error opening log file: %v\n", err)
			fmt.Println("Debug output will be sent to stdout")
		} else {
			utils.SetDebugOutput(file)
			defer file.Close()
			fmt.Printf("Debug output will be written to %s\n", *logFile)
		}
	}

	// 检查必要参数
	if *dbPath == "" {
		fmt.Println("Error: Database path is required")
		flag.Usage()
		os.Exit(1)
	}

	var opts []ipdb.Option
	if *skipByte {
		opts = append(opts, ipdb.WithLengthPrefix(ipdb.SkipByteLengthPrefix))
	}

	fmt.Printf("Opening database file: %s\n", *dbPath)
	db, err := ipdb.Open(*dbPath, opts...)
	if err != nil {
		fmt.Printf("Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if *language == "" {
		*language = db.Languages()[0]
	}

	// 打印数据库信息
	ipdb.Info(db)
	fmt.Printf("IPv4 Support: %t\n", db.IsIPv4Support())
	fmt.Printf("IPv6 Support: %t\n", db.IsIPv6Support())
	fmt.Printf("Build Time: %d\n", db.BuildTime())
	fmt.Printf("Languages: %s\n", strings.Join(db.Languages(), " "))
	fmt.Printf("Fields: %s\n", strings.Join(db.Fields(), " "))

	// 启动交互式查询
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nEnter IP address (or 'q' to quit): ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "q" || input == "quit" {
			break
		}

		if input == "" {
			continue
		}

		// 查询IP地址
		result, err := lookup(db, *kind, input, *language)
		if err != nil {
			fmt.Printf("Error searching for IP %s: %v\n", input, err)
			continue
		}

		fmt.Printf("Result for %s: %+v\n", input, result)
	}

	fmt.Println("Exiting...")
}

func lookup(db *ipdb.Database, kind, addr, language string) (interface{}, error) {
	switch kind {
	case "city":
		return db.FindCity(addr, language)
	case "district":
		return db.FindDistrict(addr, language)
	case "idc":
		return db.FindIDC(addr, language)
	case "base_station":
		return db.FindBaseStation(addr, language)
	case "map":
		return db.FindMap(addr, language)
	}
	return nil, fmt.Errorf("unknown record type %q", kind)
}
