/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
Package streamudf 是一组面向流处理管道的用户自定义函数（UDF）以及运行它们的轻量运行时。

函数按类型分为标量函数、聚合函数和表函数，全部注册在 functions 包的函数注册表中，
可以直接调用，也可以在 expr-lang 表达式、过滤条件和流查询中使用。

# 内置函数

	rename_json_field(json, old, new)          重命名JSON对象的顶层字段
	rename_json_array(json, old, new)          在JSON文本中按字面替换字段名
	nested_json_mapper(json, mappings|profile) 递归重命名嵌套JSON的字段
	shipment_doc_mapper(json)                  使用内置SAP发运单映射表
	vehicle_stay_protobuf_serialize(stay)      将车辆停留记录编码为protobuf
	vehicle_stay_protobuf_deserialize(bytes)   将protobuf解码为JSON
	tshirt_sizing_is_smaller(a, b)             比较T恤尺码
	count_substring(text, sub)                 聚合：统计子串出现次数，支持撤回与合并
	text_extractor(text [, regex])             表函数：拆分单词并输出长度
	string_logging(text)                       表函数：按所有级别记录输入并原样输出

函数名不区分大小写。

# 入门示例

	rt, err := streamudf.New(streamudf.WithLogLevel(logger.WARN))
	if err != nil {
		panic(err)
	}

	// 直接调用
	out, _ := rt.Call("rename_json_field", `{"a":1}`, "a", "b") // {"b":1}

	// 在表达式中调用
	ok, _ := rt.Eval("tshirt_sizing_is_smaller(size, 'L')", map[string]interface{}{"size": "M"})

	// 表函数
	rows, _ := rt.Explode("text_extractor", "hello stream world")

# 流查询

Query 将 types.QueryConfig 编译为 stream.Stream，按记录执行 WHERE、LATERAL、SELECT
或聚合：

	s, err := rt.Query(types.QueryConfig{
		Where:   "line != ''",
		Lateral: &types.LateralConfig{Function: "text_extractor", Args: []string{"line"}, Alias: "t"},
		Select:  []types.Projection{{Name: "word", Expr: "t.word"}},
	})
	s.AddSink(func(rows []map[string]interface{}) {
		fmt.Println(rows)
	})
	s.Emit(map[string]interface{}{"line": "to be or not"})

# 配置

WithConfig 接收 types.LoadConfig 读取的 YAML 配置，应用其中的日志设置、映射配置和别名：

	log:
	  level: debug
	  output: stderr
	mappings:
	  orders:
	    ORDER_ID: orderId
	aliases:
	  rename: rename_json_field

# 指标

WithMetrics 在给定的 prometheus.Registerer 上注册 streamudf_records_total 和
streamudf_function_calls_total 计数器。
*/
package streamudf
